package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"bicochat/internal/services"
	"bicochat/internal/store"
)

// Bridge re-broadcasts store change notifications to hub topics. It never
// inspects event payloads: any event triggers a fresh read of the whole
// affected collection, which is then published as one snapshot. Bursts
// produce redundant re-reads and redundant broadcasts; both are harmless.
//
// Per-chat message watches are discovered dynamically from child events on
// the chats collection and live for the rest of the process.
type Bridge struct {
	store    store.Store
	chats    *services.ChatService
	users    *services.UserService
	messages *services.MessageService
	hub      *Hub
	logger   *zap.Logger

	mu      sync.Mutex
	watched map[string]bool // chat ids with an active messages watch
}

func NewBridge(st store.Store, chats *services.ChatService, users *services.UserService, messages *services.MessageService, hub *Hub, logger *zap.Logger) *Bridge {
	return &Bridge{
		store:    st,
		chats:    chats,
		users:    users,
		messages: messages,
		hub:      hub,
		logger:   logger,
		watched:  make(map[string]bool),
	}
}

// Start attaches the coarse-grained subscriptions. They are never cancelled
// and never retried; a dead subscription needs a process restart.
func (b *Bridge) Start(ctx context.Context) error {
	err := b.store.WatchValue(ctx, "chats", func() {
		chats, err := b.chats.GetAllChats(ctx)
		if err != nil {
			b.logger.Error("bridge: chats re-read failed", zap.Error(err))
			return
		}
		b.hub.Publish(TopicChats, chats)
	})
	if err != nil {
		return err
	}

	err = b.store.WatchValue(ctx, "users", func() {
		users, err := b.users.GetAllUsers(ctx)
		if err != nil {
			b.logger.Error("bridge: users re-read failed", zap.Error(err))
			return
		}
		b.hub.Publish(TopicUsers, users)
	})
	if err != nil {
		return err
	}

	return b.store.WatchChildren(ctx, "chats", func(ev store.ChildEvent) {
		if ev.Type != store.ChildAdded {
			return
		}
		b.watchChatMessages(ctx, ev.Key)
	})
}

func (b *Bridge) watchChatMessages(ctx context.Context, chatID string) {
	b.mu.Lock()
	if b.watched[chatID] {
		b.mu.Unlock()
		return
	}
	b.watched[chatID] = true
	b.mu.Unlock()

	err := b.store.WatchChildren(ctx, "chats/"+chatID+"/messages", func(store.ChildEvent) {
		messages, err := b.messages.GetMessagesByChatID(ctx, chatID)
		if err != nil {
			b.logger.Error("bridge: messages re-read failed",
				zap.String("chatId", chatID), zap.Error(err))
			return
		}
		b.hub.Publish(MessagesTopic(chatID), messages)
	})
	if err != nil {
		b.logger.Error("bridge: messages watch failed",
			zap.String("chatId", chatID), zap.Error(err))
	}
}
