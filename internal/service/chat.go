package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxTitleRunes = 30

// DefaultSessionOwner owns sessions created while nobody is signed in
const DefaultSessionOwner = "current-user"

// ErrSessionNotFound is returned when a message targets an unknown session
var ErrSessionNotFound = errors.New("session not found")

// ChatState is a snapshot of the chat state
type ChatState struct {
	Sessions        []domain.ChatSession        `json:"sessions"`
	ActiveSessionID *string                     `json:"activeSessionId"`
	Messages        map[string][]domain.Message `json:"messages"`
	IsLoading       bool                        `json:"isLoading"`
}

// ChatOption configures a ChatManager
type ChatOption func(*ChatManager)

// WithChatClock sets the time source for ids, titles and timestamps
func WithChatClock(now func() time.Time) ChatOption {
	return func(m *ChatManager) { m.now = now }
}

// WithSessionOwner sets how the owning user id of new sessions is resolved
func WithSessionOwner(owner func() string) ChatOption {
	return func(m *ChatManager) { m.owner = owner }
}

// ChatManager owns chat sessions and their messages. Sessions are kept
// most-recently-created first.
type ChatManager struct {
	mu        sync.RWMutex
	sessions  []domain.ChatSession
	messages  map[string][]domain.Message
	activeID  string
	loading   bool
	responder llm.Responder
	now       func() time.Time
	owner     func() string
}

// NewChatManager creates an empty chat manager
func NewChatManager(responder llm.Responder, opts ...ChatOption) *ChatManager {
	m := &ChatManager{
		messages:  make(map[string][]domain.Message),
		responder: responder,
		now:       time.Now,
		owner:     func() string { return DefaultSessionOwner },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSession adds a session at the front of the list and makes it active.
// An empty title is replaced by a timestamped default.
func (m *ChatManager) CreateSession(title string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(title)
}

func (m *ChatManager) createLocked(title string) string {
	now := m.now()
	if title == "" {
		title = "New conversation " + now.Format("Jan 2 15:04")
	}

	session := domain.ChatSession{
		ID:        uuid.NewString(),
		UserID:    m.owner(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.sessions = append([]domain.ChatSession{session}, m.sessions...)
	m.messages[session.ID] = []domain.Message{}
	m.activeID = session.ID
	return session.ID
}

// SelectSession makes id active. Unknown ids are ignored.
func (m *ChatManager) SelectSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(id) >= 0 {
		m.activeID = id
	}
}

// DeleteSession removes a session and its messages. When it was active the
// first remaining session becomes active.
func (m *ChatManager) DeleteSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return
	}

	m.sessions = append(m.sessions[:idx:idx], m.sessions[idx+1:]...)
	delete(m.messages, id)

	if m.activeID == id {
		m.activeID = ""
		if len(m.sessions) > 0 {
			m.activeID = m.sessions[0].ID
		}
	}
}

// UpdateSessionTitle renames a session
func (m *ChatManager) UpdateSessionTitle(id, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexLocked(id); idx >= 0 {
		m.sessions[idx].Title = title
		m.sessions[idx].UpdatedAt = m.now()
	}
}

// AddMessage appends a message to the named session and refreshes its
// updated-at timestamp.
func (m *ChatManager) AddMessage(sessionID string, in domain.MessageInput) (*domain.Message, error) {
	if err := validate.Struct(in); err != nil {
		return nil, errors.New(validationMessage(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(sessionID)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}

	now := m.now()
	msg := domain.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    in.Sender,
		Content:   in.Content,
		Timestamp: now,
	}
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	if now.After(m.sessions[idx].UpdatedAt) {
		m.sessions[idx].UpdatedAt = now
	}
	return &msg, nil
}

// SendMessage appends a user message to the active session (creating one
// titled after content when none is active) and blocks until the assistant
// reply, or a system error message, has been appended.
func (m *ChatManager) SendMessage(ctx context.Context, content string) {
	m.mu.Lock()
	sessionID := m.activeID
	if sessionID == "" || m.indexLocked(sessionID) < 0 {
		sessionID = m.createLocked(titleFromContent(content))
	}
	m.mu.Unlock()

	if _, err := m.AddMessage(sessionID, domain.MessageInput{Sender: domain.RoleUser, Content: content}); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to append user message")
		return
	}

	m.SetLoading(true)
	defer m.SetLoading(false)

	reply := domain.MessageInput{Sender: domain.RoleAssistant}
	text, err := m.replyTo(ctx, content)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to get assistant reply")
		reply = domain.MessageInput{Sender: domain.RoleSystem, Content: llm.FailureReply}
	} else {
		reply.Content = text
	}

	if _, err := m.AddMessage(sessionID, reply); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Session removed before reply arrived")
	}
}

func (m *ChatManager) replyTo(ctx context.Context, content string) (text string, err error) {
	if m.responder == nil {
		return "", errors.New("no responder configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("responder panicked")
			log.Error().Interface("panic", r).Msg("Responder panicked")
		}
	}()
	return m.responder.Reply(ctx, content)
}

func titleFromContent(content string) string {
	runes := []rune(content)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "..."
	}
	return content
}

// SetLoading sets the loading flag
func (m *ChatManager) SetLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}

// IsLoading reports whether a reply is pending
func (m *ChatManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// GetActiveSession returns the active session, or nil
func (m *ChatManager) GetActiveSession() *domain.ChatSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexLocked(m.activeID)
	if idx < 0 {
		return nil
	}
	session := m.sessions[idx]
	return &session
}

// GetActiveMessages returns the messages of the active session
func (m *ChatManager) GetActiveMessages() []domain.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.activeID == "" {
		return []domain.Message{}
	}
	return append([]domain.Message{}, m.messages[m.activeID]...)
}

// Messages returns the messages of a session in insertion order
func (m *ChatManager) Messages(sessionID string) []domain.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Message{}, m.messages[sessionID]...)
}

// Sessions returns all sessions, most recently created first
func (m *ChatManager) Sessions() []domain.ChatSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ChatSession{}, m.sessions...)
}

// ActiveSessionID returns the active session id, or ""
func (m *ChatManager) ActiveSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID
}

// ClearAllSessions resets the manager to its initial empty state
func (m *ChatManager) ClearAllSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = nil
	m.messages = make(map[string][]domain.Message)
	m.activeID = ""
	m.loading = false
}

// State returns a snapshot of the whole chat state
func (m *ChatManager) State() ChatState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := ChatState{
		Sessions:  append([]domain.ChatSession{}, m.sessions...),
		Messages:  make(map[string][]domain.Message, len(m.messages)),
		IsLoading: m.loading,
	}
	for id, msgs := range m.messages {
		s.Messages[id] = append([]domain.Message{}, msgs...)
	}
	if m.activeID != "" {
		active := m.activeID
		s.ActiveSessionID = &active
	}
	return s
}

func (m *ChatManager) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}
