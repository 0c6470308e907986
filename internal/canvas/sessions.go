package canvas

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Session is one live board. Events are applied one at a time.
type Session struct {
	ID    string
	Owner int64

	mu     sync.Mutex
	canvas *Canvas
}

// Do runs fn with exclusive access to the board and returns the resulting state.
func (s *Session) Do(fn func(c *Canvas) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.canvas); err != nil {
		return s.canvas.State(), err
	}
	return s.canvas.State(), nil
}

// State returns the board's current state.
func (s *Session) State() State {
	st, _ := s.Do(func(*Canvas) error { return nil })
	return st
}

// Sessions keeps the most recently used boards. The least recently used board
// is dropped when the limit is reached.
type Sessions struct {
	cache *lru.Cache[string, *Session]
}

// NewSessions creates a store holding at most size boards.
func NewSessions(size int) (*Sessions, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("creating canvas sessions: %w", err)
	}
	return &Sessions{cache: cache}, nil
}

// Add registers a board under a fresh id. Owner 0 marks a public demo board.
func (s *Sessions) Add(owner int64, c *Canvas) *Session {
	sess := &Session{ID: uuid.NewString(), Owner: owner, canvas: c}
	s.cache.Add(sess.ID, sess)
	return sess
}

// Get returns a board visible to the given user. Demo boards are visible to
// everyone holding the id.
func (s *Sessions) Get(id string, user int64) (*Session, bool) {
	sess, ok := s.cache.Get(id)
	if !ok || (sess.Owner != 0 && sess.Owner != user) {
		return nil, false
	}
	return sess, true
}

// Len returns the number of live boards.
func (s *Sessions) Len() int {
	return s.cache.Len()
}

// NewRand returns a randomly seeded generator for laying out a new board.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
