package models

// Read-side projections pairing a store key with its entity. Recomputed on
// every read, no lifecycle of their own.

type ChatResponse struct {
	ID   string `json:"id"`
	Chat Chat   `json:"chat"`
}

type UserResponse struct {
	ID   string `json:"id"`
	User User   `json:"user"`
}

type MessageResponse struct {
	ID      string  `json:"id"`
	Message Message `json:"message"`
}

type FriendResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Avatar           string `json:"avatar"`
	FriendshipStatus string `json:"friendshipStatus"`
}

type FriendRequest struct {
	FromUID string `json:"fromUid" binding:"required"`
	ToUID   string `json:"toUid" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
