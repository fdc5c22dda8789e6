package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Observer is told how many sessions are live after every change.
type Observer interface {
	SessionsActive(n int)
}

type session struct {
	mu       sync.Mutex
	state    State
	notice   *Notice
	lastSeen time.Time
}

// Manager keeps the live sessions in memory.
type Manager struct {
	clearedTTL time.Duration
	observer   Observer
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewManager(clearedTTL time.Duration, observer Observer) *Manager {
	return &Manager{
		clearedTTL: clearedTTL,
		observer:   observer,
		now:        time.Now,
		sessions:   map[string]*session{},
	}
}

func (m *Manager) Create() (string, State) {
	id := uuid.NewString()
	sess := &session{notice: NewNotice(m.clearedTTL), lastSeen: m.now()}

	m.mu.Lock()
	m.sessions[id] = sess
	count := len(m.sessions)
	m.mu.Unlock()

	m.report(count)
	return id, sess.state
}

func (m *Manager) Get(id string) (State, error) {
	sess, ok := m.lookup(id)
	if !ok {
		return State{}, ErrNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = m.now()
	return sess.state, nil
}

// Dispatch reduces ev into the session state. A clear event arms the
// acknowledgement timer; any other user action releases it.
func (m *Manager) Dispatch(id string, ev Event) (State, error) {
	sess, ok := m.lookup(id)
	if !ok {
		return State{}, ErrNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = Reduce(sess.state, ev)

	switch ev.Type {
	case EventClear:
		sess.notice.Arm(func(gen uint64) {
			m.expireCleared(id, gen)
		})
	case EventClearedExpired:
	default:
		sess.notice.Cancel()
	}
	if ev.Type != EventClearedExpired {
		sess.lastSeen = m.now()
	}
	return sess.state, nil
}

// expireCleared drops the cleared acknowledgement armed under gen. A clear
// that re-armed the notice before the session lock was taken wins.
func (m *Manager) expireCleared(id string, gen uint64) {
	sess, ok := m.lookup(id)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.notice.Current(gen) {
		return
	}
	sess.state = Reduce(sess.state, Event{Type: EventClearedExpired})
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	sess.notice.Cancel()
	m.report(count)
	return nil
}

// Sweep drops sessions idle for longer than idle and returns how many went.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var expired []*session
	for id, sess := range m.sessions {
		sess.mu.Lock()
		stale := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, sess := range expired {
		sess.notice.Cancel()
	}
	if len(expired) > 0 {
		m.report(count)
	}
	return len(expired)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id string) (*session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

func (m *Manager) report(count int) {
	if m.observer != nil {
		m.observer.SessionsActive(count)
	}
}
