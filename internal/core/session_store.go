package core

import (
	"container/list"
	"context"
	"sync"

	"petcare-backend-go/internal/models"
)

// Default bounds of the in-memory assistant history.
const (
	DefaultMaxSessionMessages = 10
	DefaultMaxSessions        = 100
)

// MemorySessionStore is a bounded, mutex-guarded history cache. Each session keeps its most
// recent messages; when full, the session inserted first is evicted.
type MemorySessionStore struct {
	mu          sync.Mutex
	maxMessages int
	maxSessions int
	order       *list.List // of *memorySession, oldest insertion at the front
	sessions    map[string]*list.Element
}

type memorySession struct {
	id    string
	turns []models.ChatTurn
}

// NewMemorySessionStore keeps maxMessages turns for at most maxSessions sessions.
func NewMemorySessionStore(maxMessages, maxSessions int) *MemorySessionStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxSessionMessages
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &MemorySessionStore{
		maxMessages: maxMessages,
		maxSessions: maxSessions,
		order:       list.New(),
		sessions:    make(map[string]*list.Element),
	}
}

// History returns a copy of the session's turns, oldest first.
func (s *MemorySessionStore) History(_ context.Context, sessionID string) ([]models.ChatTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	turns := el.Value.(*memorySession).turns
	return append([]models.ChatTurn(nil), turns...), nil
}

// Append adds turns to a session, evicting the oldest session when full.
func (s *MemorySessionStore) Append(_ context.Context, sessionID string, turns ...models.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.sessions[sessionID]
	if !ok {
		for s.order.Len() >= s.maxSessions {
			oldest := s.order.Front()
			s.order.Remove(oldest)
			delete(s.sessions, oldest.Value.(*memorySession).id)
		}
		el = s.order.PushBack(&memorySession{id: sessionID})
		s.sessions[sessionID] = el
	}

	sess := el.Value.(*memorySession)
	sess.turns = append(sess.turns, turns...)
	if over := len(sess.turns) - s.maxMessages; over > 0 {
		sess.turns = append([]models.ChatTurn(nil), sess.turns[over:]...)
	}
	return nil
}

// Len reports the number of sessions held.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
