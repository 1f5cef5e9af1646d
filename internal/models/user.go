package models

// User is the document stored at users/{uid}. Friend state lives inside the
// user document itself: friends maps a friend's uid to a status string
// ("active"), friendRequests maps a requester's uid to "pending".
type User struct {
	Username       string              `json:"username"`
	Status         string              `json:"status"`
	Email          string              `json:"email,omitempty"`
	Avatar         string              `json:"avatar,omitempty"`
	ChatUser       map[string]ChatInfo `json:"chatUser,omitempty"`
	Friends        map[string]string   `json:"friends,omitempty"`
	FriendRequests map[string]string   `json:"friendRequests,omitempty"`
}

// ChatInfo is the denormalized per-chat projection embedded in a user
// document under chatUser/{chatId}. Chat lists render from it without
// joining into the chats collection.
type ChatInfo struct {
	LastMessage string `json:"lastMessage"`
	Name        string `json:"name"`
	Timestamp   string `json:"timestamp"`
	UnreadCount int64  `json:"unreadCount"`
	LastUser    string `json:"lastUser"`
}
