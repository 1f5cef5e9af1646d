package services

import (
	"context"

	"go.uber.org/zap"

	"bicochat/internal/models"
	"bicochat/internal/store"
)

// FriendService manages the friends / friendRequests maps embedded in user
// documents. A pending request lives at users/{toUid}/friendRequests/{fromUid};
// accepting moves both sides to friends/{...} = "active" atomically.
type FriendService struct {
	store  store.Store
	logger *zap.Logger
}

func NewFriendService(st store.Store, logger *zap.Logger) *FriendService {
	return &FriendService{store: st, logger: logger}
}

func (s *FriendService) GetFriendsOfUser(ctx context.Context, uid string) ([]models.FriendResponse, error) {
	return s.resolve(ctx, usersPath+"/"+uid+"/friends", "")
}

func (s *FriendService) GetFriendRequestsForUser(ctx context.Context, uid string) ([]models.FriendResponse, error) {
	return s.resolve(ctx, usersPath+"/"+uid+"/friendRequests", "pending")
}

// resolve reads a uid→status map and hydrates each entry with the friend's
// user document. Entries whose user no longer exists are dropped.
func (s *FriendService) resolve(ctx context.Context, path, forcedStatus string) ([]models.FriendResponse, error) {
	var entries map[string]string
	if err := s.store.Get(ctx, path, &entries); err != nil {
		return nil, err
	}

	out := make([]models.FriendResponse, 0, len(entries))
	for friendID, status := range entries {
		var user *models.User
		if err := s.store.Get(ctx, usersPath+"/"+friendID, &user); err != nil {
			s.logger.Error("friend lookup failed",
				zap.String("uid", friendID), zap.Error(err))
			continue
		}
		if user == nil {
			continue
		}
		if forcedStatus != "" {
			status = forcedStatus
		}
		out = append(out, models.FriendResponse{
			ID:               friendID,
			Username:         user.Username,
			Email:            user.Email,
			Avatar:           user.Avatar,
			FriendshipStatus: status,
		})
	}
	return out, nil
}

func (s *FriendService) SendFriendRequest(ctx context.Context, fromUID, toUID string) error {
	return s.store.Set(ctx, usersPath+"/"+toUID+"/friendRequests/"+fromUID, "pending")
}

// AcceptFriendRequest activates both friendship edges and deletes the
// pending request in one atomic multi-path update.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, fromUID, toUID string) error {
	return s.store.UpdateMulti(ctx, map[string]interface{}{
		usersPath + "/" + fromUID + "/friends/" + toUID:        "active",
		usersPath + "/" + toUID + "/friends/" + fromUID:        "active",
		usersPath + "/" + toUID + "/friendRequests/" + fromUID: nil,
	})
}

func (s *FriendService) RejectFriendRequest(ctx context.Context, fromUID, toUID string) error {
	return s.store.Delete(ctx, usersPath+"/"+toUID+"/friendRequests/"+fromUID)
}
