// Package provider holds the contracts shared by outbound provider adapters.
package provider

import "errors"

// ErrRejected marks a provider response that will not succeed on retry
// (bad recipient, invalid payload, revoked credentials).
var ErrRejected = errors.New("rejected by provider")

// Email is one outbound message with optional attachments.
type Email struct {
	From        string
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Tag         string
	Attachments []Attachment
}

// Attachment is a file carried by an Email.
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Alert is a short staff-facing notice mirrored to chat.
type Alert struct {
	Title     string
	Reference string
	Fields    [][2]string
	URL       string
}
