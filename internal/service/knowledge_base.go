package service

import (
	"context"
	"sync"
	"time"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	defaultPollInterval = 3 * time.Second

	defaultCreateKBError = "Failed to create knowledge base"
	defaultListKBError   = "Failed to load knowledge bases"
	defaultDeleteKBError = "Failed to delete knowledge base"
)

// KnowledgeBaseAPI is the part of the API client used for knowledge bases
type KnowledgeBaseAPI interface {
	CreateKnowledgeBase(ctx context.Context, req domain.KnowledgeBaseCreate) (*domain.KnowledgeBase, error)
	ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error)
	KnowledgeBaseStatus(ctx context.Context, id string) (*domain.KnowledgeBaseUpdate, error)
	DeleteKnowledgeBase(ctx context.Context, id string) error
}

// KnowledgeBaseState is a snapshot of the knowledge base state
type KnowledgeBaseState struct {
	KnowledgeBases []domain.KnowledgeBase `json:"knowledgeBases"`
	CurrentImport  *domain.KnowledgeBase  `json:"currentImport"`
	IsLoading      bool                   `json:"isLoading"`
	Error          string                 `json:"error,omitempty"`
}

// KnowledgeBaseOption configures a KnowledgeBaseManager
type KnowledgeBaseOption func(*KnowledgeBaseManager)

// WithPollInterval sets the status polling interval
func WithPollInterval(d time.Duration) KnowledgeBaseOption {
	return func(m *KnowledgeBaseManager) {
		if d > 0 {
			m.interval = d
		}
	}
}

type statusPoll struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// KnowledgeBaseManager owns the knowledge base list and the in-progress
// import. At most one status poll runs at a time.
type KnowledgeBaseManager struct {
	mu      sync.RWMutex
	api     KnowledgeBaseAPI
	kbs     []domain.KnowledgeBase
	current *domain.KnowledgeBase
	loading bool
	err     string

	interval time.Duration
	pollMu   sync.Mutex
	poll     *statusPoll
}

// NewKnowledgeBaseManager creates an empty knowledge base manager
func NewKnowledgeBaseManager(api KnowledgeBaseAPI, opts ...KnowledgeBaseOption) *KnowledgeBaseManager {
	m := &KnowledgeBaseManager{
		api:      api,
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateKnowledgeBase starts an import. On success the new record is put at
// the front of the list, becomes the current import and is polled.
func (m *KnowledgeBaseManager) CreateKnowledgeBase(ctx context.Context, req domain.KnowledgeBaseCreate) bool {
	if err := validate.Struct(req); err != nil {
		m.setError(validationMessage(err))
		return false
	}

	m.begin()
	kb, err := m.api.CreateKnowledgeBase(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("name", req.Name).Msg("Failed to create knowledge base")
		m.finish(errorMessage(err, defaultCreateKBError))
		return false
	}

	m.mu.Lock()
	m.kbs = append([]domain.KnowledgeBase{*kb}, m.kbs...)
	current := *kb
	m.current = &current
	m.loading = false
	m.mu.Unlock()

	m.StartPolling(kb.ID)
	return true
}

// GetKnowledgeBases replaces the list with the backend's
func (m *KnowledgeBaseManager) GetKnowledgeBases(ctx context.Context) bool {
	m.begin()
	kbs, err := m.api.ListKnowledgeBases(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load knowledge bases")
		m.finish(errorMessage(err, defaultListKBError))
		return false
	}

	m.mu.Lock()
	m.kbs = append([]domain.KnowledgeBase{}, kbs...)
	m.loading = false
	m.mu.Unlock()
	return true
}

// RefreshKnowledgeBases is an alias of GetKnowledgeBases
func (m *KnowledgeBaseManager) RefreshKnowledgeBases(ctx context.Context) bool {
	return m.GetKnowledgeBases(ctx)
}

// GetKnowledgeBaseStatus fetches a status update and merges it into the list
// and the current import. A terminal status stops the poll for id and
// clears the current import when it refers to id. Fetch failures are logged
// only.
func (m *KnowledgeBaseManager) GetKnowledgeBaseStatus(ctx context.Context, id string) {
	update, err := m.api.KnowledgeBaseStatus(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("knowledge_base_id", id).Msg("Failed to fetch knowledge base status")
		return
	}

	terminal := update.Status != nil && update.Status.IsTerminal()

	m.mu.Lock()
	for i := range m.kbs {
		if m.kbs[i].ID == id {
			m.kbs[i] = m.kbs[i].Merge(*update)
			terminal = terminal || m.kbs[i].Status.IsTerminal()
		}
	}
	if m.current != nil && m.current.ID == id {
		merged := m.current.Merge(*update)
		m.current = &merged
		terminal = terminal || merged.Status.IsTerminal()
		if terminal {
			m.current = nil
		}
	}
	m.mu.Unlock()

	if terminal {
		log.Info().Str("knowledge_base_id", id).Msg("Knowledge base import finished")
		m.stopPollingFor(id)
	}
}

// DeleteKnowledgeBase removes a knowledge base on the backend and locally
func (m *KnowledgeBaseManager) DeleteKnowledgeBase(ctx context.Context, id string) bool {
	m.begin()
	if err := m.api.DeleteKnowledgeBase(ctx, id); err != nil {
		log.Warn().Err(err).Str("knowledge_base_id", id).Msg("Failed to delete knowledge base")
		m.finish(errorMessage(err, defaultDeleteKBError))
		return false
	}

	m.mu.Lock()
	for i := range m.kbs {
		if m.kbs[i].ID == id {
			m.kbs = append(m.kbs[:i:i], m.kbs[i+1:]...)
			break
		}
	}
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
	m.loading = false
	m.mu.Unlock()

	m.stopPollingFor(id)
	return true
}

func (m *KnowledgeBaseManager) begin() {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	m.mu.Unlock()
}

func (m *KnowledgeBaseManager) finish(errMsg string) {
	m.mu.Lock()
	m.loading = false
	m.err = errMsg
	m.mu.Unlock()
}

func (m *KnowledgeBaseManager) setError(msg string) {
	m.mu.Lock()
	m.err = msg
	m.mu.Unlock()
}

// StartPolling polls the status of id on every interval until it reaches a
// terminal state or disappears. Any previous poll is cancelled.
func (m *KnowledgeBaseManager) StartPolling(id string) {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	if m.poll != nil {
		m.poll.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &statusPoll{id: id, cancel: cancel, done: make(chan struct{})}
	m.poll = p

	go m.runPoll(ctx, p)
}

func (m *KnowledgeBaseManager) runPoll(ctx context.Context, p *statusPoll) {
	defer close(p.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			kb := m.GetKnowledgeBaseByID(p.id)
			if kb == nil || kb.Status.IsTerminal() {
				m.stopPoll(p)
				return
			}
			m.GetKnowledgeBaseStatus(ctx, p.id)
		}
	}
}

func (m *KnowledgeBaseManager) stopPoll(p *statusPoll) {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	p.cancel()
	if m.poll == p {
		m.poll = nil
	}
}

func (m *KnowledgeBaseManager) stopPollingFor(id string) {
	m.pollMu.Lock()
	p := m.poll
	m.pollMu.Unlock()

	if p != nil && p.id == id {
		m.stopPoll(p)
	}
}

// StopPolling cancels the active poll, if any
func (m *KnowledgeBaseManager) StopPolling() {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	if m.poll != nil {
		m.poll.cancel()
		m.poll = nil
	}
}

// PollingID returns the id being polled, or ""
func (m *KnowledgeBaseManager) PollingID() string {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	if m.poll == nil {
		return ""
	}
	return m.poll.id
}

// Close stops polling and waits for the poll goroutine to exit
func (m *KnowledgeBaseManager) Close() {
	m.pollMu.Lock()
	p := m.poll
	m.poll = nil
	m.pollMu.Unlock()

	if p != nil {
		p.cancel()
		<-p.done
	}
}

// ClearError clears the last error
func (m *KnowledgeBaseManager) ClearError() {
	m.mu.Lock()
	m.err = ""
	m.mu.Unlock()
}

// SetLoading sets the loading flag
func (m *KnowledgeBaseManager) SetLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}

// GetKnowledgeBaseByID returns a copy of the listed knowledge base, or nil
func (m *KnowledgeBaseManager) GetKnowledgeBaseByID(id string) *domain.KnowledgeBase {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.kbs {
		if m.kbs[i].ID == id {
			kb := m.kbs[i]
			return &kb
		}
	}
	return nil
}

// State returns a snapshot of the current state
func (m *KnowledgeBaseManager) State() KnowledgeBaseState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := KnowledgeBaseState{
		KnowledgeBases: append([]domain.KnowledgeBase{}, m.kbs...),
		IsLoading:      m.loading,
		Error:          m.err,
	}
	if m.current != nil {
		current := *m.current
		s.CurrentImport = &current
	}
	return s
}
