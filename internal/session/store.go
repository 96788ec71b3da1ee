// Package session holds short-term per-user dialogue state. It is the only
// mutable shared state in the message pipeline; everything here is
// in-memory and safe to lose on restart.
package session

import (
	"sync"
	"time"

	"github.com/Veraticus/majordomo/internal/model"
)

// Turn is one utterance in a user's recent history.
type Turn struct {
	At         time.Time
	Text       string
	ActionType model.ActionType
}

// Pending is an action draft awaiting one missing field, plus the question
// that was asked.
type Pending struct {
	AskedAt      time.Time
	Question     string
	MissingField string
	Draft        model.ActionDraft
}

// Session is a snapshot of one user's conversational state.
type Session struct {
	LastActive time.Time
	Pending    *Pending
	UserID     string
	Turns      []Turn
}

type userState struct {
	lastActive time.Time
	pending    *Pending
	turns      []Turn
}

// Store owns all conversation sessions, partitioned by user key.
// Operations on an unknown user create state rather than erroring.
type Store struct {
	now         func() time.Time
	sessions    map[string]*userState
	maxTurns    int
	idleTimeout time.Duration
	mu          sync.Mutex
}

// NewStore creates a session store with the given retention bounds.
func NewStore(maxTurns int, idleTimeout time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*userState),
		maxTurns:    maxTurns,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// get returns the live state for a user, lazily evicting an expired
// session first. Callers must hold s.mu.
func (s *Store) get(userID string) *userState {
	now := s.now()
	st, ok := s.sessions[userID]
	if ok && s.idleTimeout > 0 && now.Sub(st.lastActive) > s.idleTimeout {
		delete(s.sessions, userID)
		ok = false
	}
	if !ok {
		st = &userState{lastActive: now}
		s.sessions[userID] = st
	}
	return st
}

// Get returns a snapshot of a user's session, creating an empty one if
// absent or expired.
func (s *Store) Get(userID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(userID)
	sess := Session{
		UserID:     userID,
		LastActive: st.lastActive,
		Turns:      make([]Turn, len(st.turns)),
	}
	copy(sess.Turns, st.turns)
	if st.pending != nil {
		p := *st.pending
		sess.Pending = &p
	}
	return sess
}

// AppendTurn records an utterance and trims history to the retention bound.
func (s *Store) AppendTurn(userID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(userID)
	if turn.At.IsZero() {
		turn.At = s.now()
	}
	st.turns = append(st.turns, turn)
	if s.maxTurns > 0 && len(st.turns) > s.maxTurns {
		st.turns = st.turns[len(st.turns)-s.maxTurns:]
	}
	st.lastActive = s.now()
}

// SetPending records a draft awaiting clarification, replacing any prior one.
func (s *Store) SetPending(userID string, p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(userID)
	if p.AskedAt.IsZero() {
		p.AskedAt = s.now()
	}
	st.pending = &p
	st.lastActive = s.now()
}

// TakePending returns and clears the pending clarification, if any. The
// read-and-clear is atomic so a clarification answer can never be applied
// twice.
func (s *Store) TakePending(userID string) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(userID)
	p := st.pending
	st.pending = nil
	return p
}

// ClearPending discards any pending clarification.
func (s *Store) ClearPending(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(userID).pending = nil
}
