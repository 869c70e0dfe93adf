package domain

import "time"

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message represents a chat message in a session. Messages are immutable once created.
type Message struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Sender    MessageRole `json:"sender"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageInput is the caller-supplied part of a new message
type MessageInput struct {
	Sender  MessageRole `json:"sender" validate:"required,oneof=user assistant system"`
	Content string      `json:"content"`
}
