package checkout

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or already-finalized sessions.
var ErrSessionNotFound = errors.New("checkout: session not found")

// Manager owns the live checkout sessions. Sessions are in-memory only; a
// process restart starts checkout over.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	resolver QuoteResolver
	lookup   AddressLookup
	cfg      Config
	logger   *slog.Logger
}

func NewManager(resolver QuoteResolver, lookup AddressLookup, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: map[string]*Session{},
		resolver: resolver,
		lookup:   lookup,
		cfg:      cfg,
		logger:   logger,
	}
}

// Create starts a fresh session over the given cart view.
func (m *Manager) Create(cartReader CartReader) *Session {
	s := NewSession(uuid.NewString(), cartReader, m.resolver, m.lookup, m.cfg, m.logger)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Discard drops a session, called after successful finalization.
func (m *Manager) Discard(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
