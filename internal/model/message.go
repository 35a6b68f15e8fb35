package model

import (
	"encoding/json"
	"time"
)

// Status is the handling state of a lead message.
type Status string

const (
	StatusUnread   Status = "unread"
	StatusRead     Status = "read"
	StatusResolved Status = "resolved"
)

// Message represents a lead captured via the contact/order form.
type Message struct {
	ID            string            `json:"id"`
	SenderName    string            `json:"senderName,omitempty"`
	SenderEmail   string            `json:"senderEmail,omitempty"`
	SenderPhone   string            `json:"senderPhone,omitempty"`
	SenderAddress string            `json:"senderAddress,omitempty"`
	Subject       string            `json:"subject,omitempty"`
	Body          string            `json:"body,omitempty"`
	Items         []json.RawMessage `json:"items"`
	Timestamp     time.Time         `json:"timestamp"`
	Status        Status            `json:"status"` // "unread" | "read" | "resolved"
	UserID        string            `json:"userId,omitempty"`
}

// ApplyDefaults fills the server-assigned fields that the client omitted.
func (m *Message) ApplyDefaults(now time.Time) {
	if m.Timestamp.IsZero() {
		m.Timestamp = now.UTC()
	}
	if m.Status == "" {
		m.Status = StatusUnread
	}
	if m.Items == nil {
		m.Items = []json.RawMessage{}
	}
}

// DispatchResult describes the outcome of an administrator SMS notification.
type DispatchResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
