package models

import "time"

// Message is one direct chat message between two users. ChatKey is the
// canonical pair key shared by both participants: the lexicographically
// smaller uid first, joined with an underscore. Read flips true the moment
// the receiver observes the message in an active chat view, one message at
// a time.
type Message struct {
	ID          string    `json:"id"`
	ChatKey     string    `json:"chatKey"`
	SenderUID   string    `json:"senderUid"`
	ReceiverUID string    `json:"receiverUid"`
	Text        string    `json:"text"`
	Read        bool      `json:"read"`
	SentAt      time.Time `json:"sentAt"`
}

// SupportMessage is one exchange with the support chatbot widget.
type SupportMessage struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Text      string    `json:"text"`
	Reply     string    `json:"reply,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
