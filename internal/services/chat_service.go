package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bicochat/internal/models"
	"bicochat/internal/store"
)

const (
	chatsPath = "chats"
	usersPath = "users"
)

// ChatService owns the chats collection and the ChatInfo projections it
// fans out into participant documents.
type ChatService struct {
	store  store.Store
	users  *UserService
	logger *zap.Logger
}

func NewChatService(st store.Store, users *UserService, logger *zap.Logger) *ChatService {
	return &ChatService{store: st, users: users, logger: logger}
}

func (s *ChatService) GetAllChats(ctx context.Context) ([]models.ChatResponse, error) {
	var chats map[string]models.Chat
	if err := s.store.Get(ctx, chatsPath, &chats); err != nil {
		return nil, err
	}
	out := make([]models.ChatResponse, 0, len(chats))
	for id, chat := range chats {
		out = append(out, models.ChatResponse{ID: id, Chat: chat})
	}
	return out, nil
}

// GetChatByID returns (nil, nil) when the chat does not exist; absence is
// not an error.
func (s *ChatService) GetChatByID(ctx context.Context, chatID string) (*models.ChatResponse, error) {
	var chat *models.Chat
	if err := s.store.Get(ctx, chatsPath+"/"+chatID, &chat); err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, nil
	}
	return &models.ChatResponse{ID: chatID, Chat: *chat}, nil
}

// CreateChat writes the chat under a fresh id and then seeds a ChatInfo
// entry in every participant's document. The fan-out is fire-and-forget:
// one participant failing does not roll back the chat or the others.
func (s *ChatService) CreateChat(ctx context.Context, chat models.Chat) (models.ChatResponse, error) {
	chatID := uuid.NewString()
	if err := s.store.Set(ctx, chatsPath+"/"+chatID, chat); err != nil {
		return models.ChatResponse{}, err
	}
	s.seedChatReferences(ctx, chatID, chat)
	return models.ChatResponse{ID: chatID, Chat: chat}, nil
}

func (s *ChatService) seedChatReferences(ctx context.Context, chatID string, chat models.Chat) {
	for _, uid := range chat.Participants {
		resp, err := s.users.GetUserByID(ctx, uid)
		if err != nil || resp == nil {
			s.logger.Error("seed chat reference: participant lookup failed",
				zap.String("chatId", chatID), zap.String("uid", uid), zap.Error(err))
			continue
		}
		user := resp.User

		name := chat.Name
		if name == "" {
			name = uid
		}
		info := models.ChatInfo{
			LastMessage: "",
			Name:        name,
			Timestamp:   time.Now().Format(time.RFC3339),
			UnreadCount: 0,
			LastUser:    "system",
		}
		if user.ChatUser == nil {
			user.ChatUser = make(map[string]models.ChatInfo)
		}
		user.ChatUser[chatID] = info

		if err := s.store.Set(ctx, usersPath+"/"+uid, user); err != nil {
			s.logger.Error("seed chat reference: write failed",
				zap.String("chatId", chatID), zap.String("uid", uid), zap.Error(err))
		}
	}
}

// AddMessage stores the message and rewrites each participant's ChatInfo:
// lastMessage, timestamp and lastUser unconditionally, unreadCount +1 for
// everyone except the sender.
func (s *ChatService) AddMessage(ctx context.Context, chatID string, message models.Message) (models.MessageResponse, error) {
	messageID := uuid.NewString()
	if err := s.store.Set(ctx, chatsPath+"/"+chatID+"/messages/"+messageID, message); err != nil {
		return models.MessageResponse{}, err
	}
	s.updateLastMessageForParticipants(ctx, chatID, message)
	return models.MessageResponse{ID: messageID, Message: message}, nil
}

func (s *ChatService) updateLastMessageForParticipants(ctx context.Context, chatID string, message models.Message) {
	resp, err := s.GetChatByID(ctx, chatID)
	if err != nil || resp == nil {
		s.logger.Error("update last message: chat lookup failed",
			zap.String("chatId", chatID), zap.Error(err))
		return
	}

	for _, uid := range resp.Chat.Participants {
		userResp, err := s.users.GetUserByID(ctx, uid)
		if err != nil || userResp == nil {
			s.logger.Error("update last message: participant lookup failed",
				zap.String("chatId", chatID), zap.String("uid", uid), zap.Error(err))
			continue
		}
		user := userResp.User
		info, ok := user.ChatUser[chatID]
		if !ok {
			continue
		}

		info.LastMessage = message.Content
		info.Timestamp = message.Timestamp
		info.LastUser = message.Sender
		if uid != message.Sender {
			info.UnreadCount++
		}
		user.ChatUser[chatID] = info

		if err := s.store.Set(ctx, usersPath+"/"+uid, user); err != nil {
			s.logger.Error("update last message: write failed",
				zap.String("chatId", chatID), zap.String("uid", uid), zap.Error(err))
		}
	}
}

// MarkChatAsRead zeroes one user's unread counter for the chat. Message
// read flags are untouched; the all-participants variant lives on
// UserService. Calling it twice is harmless.
func (s *ChatService) MarkChatAsRead(ctx context.Context, chatID, userID string) error {
	resp, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	user := resp.User
	info, ok := user.ChatUser[chatID]
	if !ok {
		return nil
	}
	info.UnreadCount = 0
	user.ChatUser[chatID] = info
	return s.store.Set(ctx, usersPath+"/"+userID, user)
}

func (s *ChatService) MessagesMap(ctx context.Context, chatID string) (map[string]models.Message, error) {
	var messages map[string]models.Message
	if err := s.store.Get(ctx, chatsPath+"/"+chatID+"/messages", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
