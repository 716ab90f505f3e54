package report

import (
	"hash/fnv"
	"sync"
)

// sessionState tracks progress through the interactive report flow.
type sessionState int

const (
	awaitingReason sessionState = iota
	awaitingConfirmation
)

// Session is the ephemeral per-reporter state. The embedded mutex serializes
// transitions for a single reporter; different reporters never contend on it.
type Session struct {
	mu       sync.Mutex
	reporter string
	target   string
	reason   string
	state    sessionState
	// closed marks a session that was replaced or discarded while a caller
	// still held a reference to it. Transitions on a closed session are
	// no-ops.
	closed bool
}

func newSession(reporter string, target string) *Session {
	return &Session{
		reporter: reporter,
		target:   target,
		state:    awaitingReason,
	}
}

const sessionShards = 16

// SessionStore maps reporter identity to the live session. The map is sharded
// so that unrelated reporters do not serialize on a single lock.
type SessionStore struct {
	shards [sessionShards]sessionShard
}

type sessionShard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	store := &SessionStore{}
	for i := range store.shards {
		store.shards[i].sessions = make(map[string]*Session)
	}

	return store
}

func (s *SessionStore) shard(reporter string) *sessionShard {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(reporter))

	return &s.shards[hasher.Sum32()%sessionShards]
}

// Put installs a session for the reporter, closing any session it replaces so
// in-flight transitions on the old one become no-ops.
func (s *SessionStore) Put(session *Session) {
	shard := s.shard(session.reporter)

	shard.mu.Lock()
	previous, found := shard.sessions[session.reporter]
	shard.sessions[session.reporter] = session
	shard.mu.Unlock()

	if found {
		previous.mu.Lock()
		previous.closed = true
		previous.mu.Unlock()
	}
}

func (s *SessionStore) Get(reporter string) (*Session, bool) {
	shard := s.shard(reporter)

	shard.mu.RLock()
	session, found := shard.sessions[reporter]
	shard.mu.RUnlock()

	return session, found
}

// Delete removes the reporter's session only if it is still the given one,
// and marks it closed. A session replaced by a newer Put is left alone.
func (s *SessionStore) Delete(session *Session) {
	shard := s.shard(session.reporter)

	shard.mu.Lock()
	if current, found := shard.sessions[session.reporter]; found && current == session {
		delete(shard.sessions, session.reporter)
	}
	shard.mu.Unlock()

	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()
}

// DeleteReporter discards whatever session the reporter currently has, used
// when the reporter disconnects.
func (s *SessionStore) DeleteReporter(reporter string) {
	shard := s.shard(reporter)

	shard.mu.Lock()
	session, found := shard.sessions[reporter]
	if found {
		delete(shard.sessions, reporter)
	}
	shard.mu.Unlock()

	if found {
		session.mu.Lock()
		session.closed = true
		session.mu.Unlock()
	}
}
