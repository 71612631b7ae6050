package session

import "sync"

// Manager tracks live controllers by session id so several independent
// sessions can coexist in one process.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Controller)}
}

func (m *Manager) Put(id string, c *Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = c
}

func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[id]
	return c, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
