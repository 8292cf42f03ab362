package domain

import "time"

// Attachment describes a file attached to a message. The binary itself lives
// in object storage; only the metadata is persisted with the message.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Message is a direct message between two users. The platform policy routes
// every non-admin conversation through the admin account.
type Message struct {
	ID          string
	FromID      string
	ToID        string
	Body        string
	Attachments []Attachment
	Read        bool
	CreatedAt   time.Time
}
