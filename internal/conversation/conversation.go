// Package conversation holds per-session dialog state: a bounded
// sliding window of resolved exchanges, keyed by session identifier.
package conversation

import (
	"sync"

	"github.com/chicbot/chicbot/internal/extract"
)

// WindowSize is the number of most recent exchanges retained per session.
const WindowSize = 5

// Exchange is one resolved conversational turn. Immutable once appended.
type Exchange struct {
	Original     string
	QueryEnglish string
	Entities     *extract.Entities
	Response     string
	ProductNames []string // up to 3 product names shown
	Language     string
}

// Window is the bounded per-session history. Insertion order is
// recency order; the oldest entry is evicted beyond WindowSize.
// A Window is not safe for concurrent use; the owning Session
// serializes access.
type Window struct {
	exchanges []Exchange
}

// Append adds an exchange, evicting the oldest when the window is full.
func (w *Window) Append(e Exchange) {
	w.exchanges = append(w.exchanges, e)
	if len(w.exchanges) > WindowSize {
		w.exchanges = w.exchanges[len(w.exchanges)-WindowSize:]
	}
}

// Exchanges returns the retained history, most recent last. The
// returned slice must be treated as read-only.
func (w *Window) Exchanges() []Exchange {
	return w.exchanges
}

// Last returns the most recent exchange, or nil if the window is empty.
func (w *Window) Last() *Exchange {
	if len(w.exchanges) == 0 {
		return nil
	}
	return &w.exchanges[len(w.exchanges)-1]
}

// Len returns the number of retained exchanges.
func (w *Window) Len() int {
	return len(w.exchanges)
}

// Recent returns up to n of the most recent exchanges, oldest first.
func (w *Window) Recent(n int) []Exchange {
	if n <= 0 || len(w.exchanges) == 0 {
		return nil
	}
	if n > len(w.exchanges) {
		n = len(w.exchanges)
	}
	return w.exchanges[len(w.exchanges)-n:]
}

// Session owns one conversation window. Its mutex serializes message
// processing for the session: the pipeline holds the lock for the full
// request so no two in-flight messages interleave.
type Session struct {
	mu     sync.Mutex
	window Window
}

// Lock acquires the session for exclusive processing.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Window returns the session's history window. Callers must hold the
// session lock.
func (s *Session) Window() *Window { return &s.window }

// Manager looks up or creates sessions by identifier. Cross-session
// requests are fully independent and may run in parallel.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = &Session{}
		m.sessions[id] = s
	}
	return s
}

// Remove tears down a session, discarding its history.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
