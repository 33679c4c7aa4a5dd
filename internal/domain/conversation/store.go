package conversation

import (
	"context"
	"sync"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
)

// Store persists dialogue state between updates. Writes are last-write-wins
// per key; the transport serializes updates per chat, so no cross-key
// coordination is needed.
type Store interface {
	// Load returns the state for a chat, or a fresh idle state when none
	// is stored.
	Load(ctx context.Context, id user.TelegramID) (*State, error)

	// Save stores the state for a chat.
	Save(ctx context.Context, id user.TelegramID, state *State) error

	// Clear removes the stored state for a chat.
	Clear(ctx context.Context, id user.TelegramID) error
}

// MemoryStore is a process-local Store used in tests and when Redis is
// disabled. State does not survive restarts in this mode.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[user.TelegramID]State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[user.TelegramID]State)}
}

// Load implements Store. Returned states are copies; mutations are not
// visible until Save.
func (m *MemoryStore) Load(_ context.Context, id user.TelegramID) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[id]
	if !ok {
		return NewState(), nil
	}
	cp := st
	cp.Semesters = append([]string(nil), st.Semesters...)
	return &cp, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, id user.TelegramID, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *state
	cp.Semesters = append([]string(nil), state.Semesters...)
	m.states[id] = cp
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, id user.TelegramID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, id)
	return nil
}
