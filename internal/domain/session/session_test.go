package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resultados/internal/domain/results"
)

func TestReduceSelectAndClear(t *testing.T) {
	s := State{}
	s = Reduce(s, Event{Type: EventSelect, Field: "sector", Value: " TI "})
	s = Reduce(s, Event{Type: EventSelect, Field: "Month", Value: "março"})
	assert.Equal(t, results.Selection{Sector: "TI", Month: "março"}, s.Selection)
	assert.Equal(t, 2, s.Version)

	s = Reduce(s, Event{Type: EventSelect, Field: "sector", Value: ""})
	assert.Equal(t, results.Selection{Month: "março"}, s.Selection, "blank value removes the constraint")

	s = Reduce(s, Event{Type: EventClear})
	assert.Equal(t, results.Selection{}, s.Selection)
	assert.True(t, s.Cleared)

	s = Reduce(s, Event{Type: EventClearedExpired})
	assert.False(t, s.Cleared)
	assert.Equal(t, 5, s.Version)
}

func TestReduceIsPure(t *testing.T) {
	before := State{Selection: results.Selection{Name: "Ana"}, Version: 3}
	after := Reduce(before, Event{Type: EventSelect, Field: "name", Value: "Bea"})
	assert.Equal(t, "Ana", before.Selection.Name)
	assert.Equal(t, "Bea", after.Selection.Name)
}

func TestReduceIgnoresUnknownInput(t *testing.T) {
	s := State{Version: 1}
	assert.Equal(t, s, Reduce(s, Event{Type: EventSelect, Field: "theme", Value: "dark"}))
	assert.Equal(t, s, Reduce(s, Event{Type: "toggle"}))
	assert.Equal(t, s, Reduce(s, Event{Type: EventClearedExpired}))
	assert.Equal(t, s, Reduce(s, Event{Type: EventOpenDetail}))
	assert.Equal(t, s, Reduce(s, Event{Type: EventCloseDetail}))
}

func TestReduceNewActionDismissesClearedFlag(t *testing.T) {
	s := Reduce(State{}, Event{Type: EventClear})
	require.True(t, s.Cleared)
	s = Reduce(s, Event{Type: EventSelect, Field: "year", Value: "2024"})
	assert.False(t, s.Cleared)
}

func TestReduceDetailPopup(t *testing.T) {
	detail := DetailFor(results.Record{Name: "Ana", Month: "maio", Year: "2024", Note1: 4, Note2: 5, Note3: 3})
	s := Reduce(State{}, Event{Type: EventOpenDetail, Detail: &detail})
	require.NotNil(t, s.Detail)
	assert.Equal(t, 5, s.Detail.Note2)

	detail.Note2 = 0
	assert.Equal(t, 5, s.Detail.Note2, "state keeps its own copy")

	s = Reduce(s, Event{Type: EventCloseDetail})
	assert.Nil(t, s.Detail)
}

func TestNoticeCancel(t *testing.T) {
	n := NewNotice(20 * time.Millisecond)
	fired := make(chan struct{}, 1)
	n.Arm(func(uint64) { fired <- struct{}{} })
	assert.True(t, n.Pending())
	assert.True(t, n.Cancel())
	assert.False(t, n.Pending())

	select {
	case <-fired:
		t.Fatal("cancelled notice must not fire")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNoticeRearmReplacesPrevious(t *testing.T) {
	n := NewNotice(20 * time.Millisecond)
	fired := make(chan string, 2)
	n.Arm(func(uint64) { fired <- "first" })
	n.Arm(func(uint64) { fired <- "second" })

	select {
	case got := <-fired:
		assert.Equal(t, "second", got)
	case <-time.After(time.Second):
		t.Fatal("notice did not fire")
	}
	select {
	case got := <-fired:
		t.Fatalf("unexpected extra callback %q", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestManagerClearedFlagExpires(t *testing.T) {
	m := NewManager(20*time.Millisecond, nil)
	id, _ := m.Create()

	state, err := m.Dispatch(id, Event{Type: EventClear})
	require.NoError(t, err)
	assert.True(t, state.Cleared)

	waitFor(t, func() bool {
		s, err := m.Get(id)
		return err == nil && !s.Cleared
	})
}

func TestManagerActionCancelsClearedTimer(t *testing.T) {
	m := NewManager(time.Hour, nil)
	id, _ := m.Create()

	_, err := m.Dispatch(id, Event{Type: EventClear})
	require.NoError(t, err)
	sess, _ := m.lookup(id)
	require.True(t, sess.notice.Pending())

	state, err := m.Dispatch(id, Event{Type: EventSelect, Field: FieldName, Value: "Ana"})
	require.NoError(t, err)
	assert.False(t, state.Cleared)
	assert.False(t, sess.notice.Pending())
}

func TestManagerStaleExpiryKeepsNewClear(t *testing.T) {
	m := NewManager(time.Hour, nil)
	id, _ := m.Create()

	_, err := m.Dispatch(id, Event{Type: EventClear})
	require.NoError(t, err)
	sess, _ := m.lookup(id)
	first := sess.notice.Generation()

	_, err = m.Dispatch(id, Event{Type: EventClear})
	require.NoError(t, err)
	second := sess.notice.Generation()
	require.NotEqual(t, first, second)

	m.expireCleared(id, first)
	state, err := m.Get(id)
	require.NoError(t, err)
	assert.True(t, state.Cleared, "expiry armed by the first clear must not end the second")

	m.expireCleared(id, second)
	state, err = m.Get(id)
	require.NoError(t, err)
	assert.False(t, state.Cleared)
}

type gauge struct{ last int }

func (g *gauge) SessionsActive(n int) { g.last = n }

func TestManagerLifecycleAndSweep(t *testing.T) {
	g := &gauge{}
	m := NewManager(time.Second, g)
	now := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, _ := m.Create()
	now = now.Add(10 * time.Minute)
	fresh, _ := m.Create()
	assert.Equal(t, 2, g.last)

	assert.Equal(t, 1, m.Sweep(5*time.Minute))
	_, err := m.Get(stale)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = m.Get(fresh)
	assert.NoError(t, err)
	assert.Equal(t, 1, g.last)

	require.NoError(t, m.Delete(fresh))
	assert.True(t, errors.Is(m.Delete(fresh), ErrNotFound))
	_, err = m.Dispatch(fresh, Event{Type: EventClear})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 0, m.Len())
}
