package messages

import "time"

type Message struct {
	ID              string
	SenderUserID    string
	RecipientUserID string

	Body string

	CreatedAt time.Time
	ReadAt    *time.Time
}

// Thread resume una conversación en el inbox.
type Thread struct {
	WithUserID  string
	LastMessage Message
	Unread      int
}
