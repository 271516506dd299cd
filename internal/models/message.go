package models

import "fmt"

// Message is one chat message as delivered by the message feed. Content
// arrives in several shapes depending on what the sender's client wrote:
// plaintext, a shortened preview, raw (possibly ciphered) content, or only
// a shared-content marker.
type Message struct {
	ID                string    `json:"id"`
	SenderID          int64     `json:"senderId"`
	ReceiverID        int64     `json:"receiverId"`
	Content           string    `json:"content,omitempty"`
	ContentPreview    string    `json:"contentPreview,omitempty"`
	ContentPlain      string    `json:"contentPlain,omitempty"`
	SharedContentType string    `json:"sharedContentType,omitempty"`
	SentAt            Timestamp `json:"sentAt"`
	Read              bool      `json:"read"`
}

// DisplayBody derives the alert body from the first usable content field.
func (m Message) DisplayBody() string {
	switch {
	case m.ContentPlain != "":
		return m.ContentPlain
	case m.ContentPreview != "":
		return m.ContentPreview
	case m.Content != "":
		return m.Content
	case m.SharedContentType != "":
		return fmt.Sprintf("[Shared %s]", m.SharedContentType)
	default:
		return "New message"
	}
}
