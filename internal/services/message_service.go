package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"bicochat/internal/models"
	"bicochat/internal/store"
)

type MessageService struct {
	store  store.Store
	chats  *ChatService
	logger *zap.Logger
}

func NewMessageService(st store.Store, chats *ChatService, logger *zap.Logger) *MessageService {
	return &MessageService{store: st, chats: chats, logger: logger}
}

func (s *MessageService) GetMessages(ctx context.Context, chatID string) ([]models.MessageResponse, error) {
	messagesMap, err := s.chats.MessagesMap(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]models.MessageResponse, 0, len(messagesMap))
	for id, message := range messagesMap {
		out = append(out, models.MessageResponse{ID: id, Message: message})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Message.Timestamp < out[j].Message.Timestamp
	})
	return out, nil
}

// GetMessagesByChatID returns the chat's messages sorted by timestamp, each
// tagged with its id. This is the shape the REST listing and the message
// topic broadcast use.
func (s *MessageService) GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error) {
	messagesMap, err := s.chats.MessagesMap(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(messagesMap))
	for id, message := range messagesMap {
		message.ID = id
		out = append(out, message)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

func (s *MessageService) AddMessage(ctx context.Context, chatID, sender, content string) (models.MessageResponse, error) {
	message := models.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
		Read:      sender == "currentUser",
	}
	return s.chats.AddMessage(ctx, chatID, message)
}

// SendMessage is the path behind POST /api/messages/{chatId}/send. Unlike
// AddMessage it touches each participant's ChatInfo with a partial update
// instead of rewriting the whole user document, recomputing the display
// name and incrementing the unread counter read-then-write.
//
// Two concurrent sends can read the same counter and both write +1; the
// store offers no cross-call atomicity and this path deliberately takes no
// lock.
func (s *MessageService) SendMessage(ctx context.Context, chatID string, message models.Message) (map[string]interface{}, error) {
	messageID := fmt.Sprintf("msg%d", time.Now().UnixMilli())

	if err := s.store.Set(ctx, chatsPath+"/"+chatID+"/messages/"+messageID, message); err != nil {
		return nil, err
	}

	var participants []string
	if err := s.store.Get(ctx, chatsPath+"/"+chatID+"/participants", &participants); err != nil {
		return nil, err
	}
	var users map[string]models.User
	if err := s.store.Get(ctx, usersPath, &users); err != nil {
		return nil, err
	}

	for _, uid := range participants {
		if uid == "" {
			continue
		}

		name := "Chat"
		if len(participants) == 2 {
			for _, other := range participants {
				if other != uid {
					if u, ok := users[other]; ok {
						name = u.Username
					}
				}
			}
		}

		chatUserPath := fmt.Sprintf("%s/%s/chatUser/%s", usersPath, uid, chatID)

		var currentUnread *int64
		if err := s.store.Get(ctx, chatUserPath+"/unreadCount", &currentUnread); err != nil {
			s.logger.Error("send message: unread read failed",
				zap.String("chatId", chatID), zap.String("uid", uid), zap.Error(err))
			continue
		}
		newCount := int64(0)
		if currentUnread != nil {
			newCount = *currentUnread
		}
		if uid != message.Sender {
			newCount++
		}

		err := s.store.Update(ctx, chatUserPath, map[string]interface{}{
			"name":        name,
			"lastMessage": message.Content,
			"lastUser":    message.Sender,
			"timestamp":   message.Timestamp,
			"unreadCount": newCount,
		})
		if err != nil {
			s.logger.Error("send message: projection update failed",
				zap.String("chatId", chatID), zap.String("uid", uid), zap.Error(err))
		}
	}

	return map[string]interface{}{
		"id":        messageID,
		"chatId":    chatID,
		"content":   message.Content,
		"sender":    message.Sender,
		"timestamp": message.Timestamp,
	}, nil
}
