package models

// Chat is the document stored at chats/{chatId}. Participants are an ordered
// list of user ids and are immutable after creation.
type Chat struct {
	Name         string             `json:"name,omitempty"`
	Type         string             `json:"type"` // "individual" or "group"
	Participants []string           `json:"participants"`
	Messages     map[string]Message `json:"messages,omitempty"`
}
