package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bicochat/internal/models"
	"bicochat/internal/store"
)

type UserService struct {
	store  store.Store
	logger *zap.Logger
}

func NewUserService(st store.Store, logger *zap.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

// GetUserByID returns (nil, nil) when the user does not exist.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.UserResponse, error) {
	var user *models.User
	if err := s.store.Get(ctx, usersPath+"/"+userID, &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &models.UserResponse{ID: userID, User: *user}, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.UserResponse, error) {
	var users map[string]models.User
	if err := s.store.Get(ctx, usersPath, &users); err != nil {
		return nil, err
	}
	out := make([]models.UserResponse, 0, len(users))
	for id, user := range users {
		out = append(out, models.UserResponse{ID: id, User: user})
	}
	return out, nil
}

func (s *UserService) UpdateUserStatus(ctx context.Context, userID, status string) error {
	return s.store.Update(ctx, usersPath+"/"+userID, map[string]interface{}{
		"status": status,
	})
}

func (s *UserService) AddUser(ctx context.Context, userID string, user models.User) error {
	return s.store.Set(ctx, usersPath+"/"+userID, user)
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, usersPath+"/"+userID)
}

func (s *UserService) GetUserChats(ctx context.Context, userID string) (map[string]models.ChatInfo, error) {
	var chats map[string]models.ChatInfo
	if err := s.store.Get(ctx, usersPath+"/"+userID+"/chatUser", &chats); err != nil {
		return nil, err
	}
	if chats == nil {
		chats = make(map[string]models.ChatInfo)
	}
	return chats, nil
}

// MarkChatAsRead is the chat-wide variant: it zeroes unreadCount for every
// participant and flips every unread message's read flag, all in a single
// multi-path update so readers never observe half of it.
func (s *UserService) MarkChatAsRead(ctx context.Context, chatID string) error {
	var participants []string
	if err := s.store.Get(ctx, chatsPath+"/"+chatID+"/participants", &participants); err != nil {
		return err
	}
	if len(participants) == 0 {
		return fmt.Errorf("no participants found for chat %s", chatID)
	}

	updates := make(map[string]interface{})
	for _, uid := range participants {
		updates[usersPath+"/"+uid+"/chatUser/"+chatID+"/unreadCount"] = 0
	}

	var messages map[string]models.Message
	if err := s.store.Get(ctx, chatsPath+"/"+chatID+"/messages", &messages); err != nil {
		return err
	}
	for messageID, message := range messages {
		if !message.Read {
			updates[chatsPath+"/"+chatID+"/messages/"+messageID+"/read"] = true
		}
	}

	return s.store.UpdateMulti(ctx, updates)
}
