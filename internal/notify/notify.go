package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Level is the severity of a user-facing notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a short toast shown to the user
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Level   Level  `json:"level"`
}

// Notifier delivers notifications
type Notifier interface {
	Notify(n Notification)
}

// Info builds an informational notification
func Info(title, message string) Notification {
	return Notification{Title: title, Message: message, Level: LevelInfo}
}

// Success builds a success notification
func Success(title, message string) Notification {
	return Notification{Title: title, Message: message, Level: LevelSuccess}
}

// Failure builds an error notification
func Failure(title, message string) Notification {
	return Notification{Title: title, Message: message, Level: LevelError}
}

// LogNotifier writes notifications to the global logger
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	event := log.Info()
	if n.Level == LevelError {
		event = log.Warn()
	}
	event.Str("level_hint", string(n.Level)).Str("title", n.Title).Msg(n.Message)
}

// Multi fans a notification out to every notifier
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Discard drops every notification
type Discard struct{}

func (Discard) Notify(Notification) {}

// Buffer keeps the most recent notifications in memory
type Buffer struct {
	mu    sync.Mutex
	size  int
	items []Notification
}

// NewBuffer creates a buffer holding up to size notifications
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 50
	}
	return &Buffer{size: size}
}

func (b *Buffer) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	if len(b.items) > b.size {
		b.items = b.items[len(b.items)-b.size:]
	}
}

// Recent returns buffered notifications, oldest first
func (b *Buffer) Recent() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Drain returns buffered notifications and empties the buffer
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
