package session

import (
	"sync"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

type state struct {
	// procMu serializes whole chat turns, dataMu guards the turn slice.
	// They are separate so Append and History work under a held Lock.
	procMu sync.Mutex
	dataMu sync.Mutex
	turns  []model.ConversationTurn
}

// Store keeps short-term conversation history per session, capped at
// model.SessionWindow turns with FIFO eviction. Each session also carries a
// mutex so a whole chat turn can be serialized against concurrent requests
// for the same session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*state
	window   int
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*state),
		window:   model.SessionWindow,
	}
}

func (x *Store) session(sessionID string) *state {
	x.mu.Lock()
	defer x.mu.Unlock()

	s, ok := x.sessions[sessionID]
	if !ok {
		s = &state{}
		x.sessions[sessionID] = s
	}
	return s
}

// Lock serializes processing for one session. The returned function releases
// the lock. Different sessions proceed independently.
func (x *Store) Lock(sessionID string) func() {
	s := x.session(sessionID)
	s.procMu.Lock()
	return s.procMu.Unlock
}

// Append adds a turn to the session, evicting the oldest turn when the
// window is full.
func (x *Store) Append(sessionID string, turn model.ConversationTurn) {
	s := x.session(sessionID)
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	s.turns = append(s.turns, turn)
	if len(s.turns) > x.window {
		s.turns = append([]model.ConversationTurn(nil), s.turns[len(s.turns)-x.window:]...)
	}
}

// History returns a copy of the session's turns, oldest first
func (x *Store) History(sessionID string) []model.ConversationTurn {
	s := x.session(sessionID)
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	return append([]model.ConversationTurn(nil), s.turns...)
}

// Clear drops all turns for the session
func (x *Store) Clear(sessionID string) {
	s := x.session(sessionID)
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	s.turns = nil
}
