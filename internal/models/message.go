package models

// Message lives under chats/{chatId}/messages/{messageId}. The ID field is
// not persisted; listings fill it in from the map key.
type Message struct {
	ID        string `json:"id,omitempty"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}
