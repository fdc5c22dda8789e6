package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	runs map[string]int
}

func (r *recorder) JobRun(jobType, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runs == nil {
		r.runs = map[string]int{}
	}
	r.runs[jobType+":"+status]++
}

func (r *recorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[key]
}

func TestRunNowRecordsOutcome(t *testing.T) {
	rec := &recorder{}
	svc := New(rec)

	run, err := svc.RunNow(context.Background(), JobDatasetReload, func(context.Context) (any, error) {
		return map[string]any{"records": 12}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.NotEmpty(t, run.ID)
	require.NotNil(t, run.CompletedAt)

	_, err = svc.RunNow(context.Background(), JobDatasetReload, func(context.Context) (any, error) {
		return nil, errors.New("source offline")
	})
	require.Error(t, err)

	runs := svc.Runs(0)
	require.Len(t, runs, 2)
	assert.Equal(t, StatusFailed, runs[0].Status, "newest first")
	assert.Equal(t, "source offline", runs[0].Error)
	assert.Equal(t, 1, rec.count("dataset_reload:completed"))
	assert.Equal(t, 1, rec.count("dataset_reload:failed"))
}

func TestRunsKeepsBoundedHistory(t *testing.T) {
	svc := New(nil)
	svc.history = 3
	for i := 0; i < 5; i++ {
		_, _ = svc.RunNow(context.Background(), JobSessionSweep, func(context.Context) (any, error) { return i, nil })
	}
	runs := svc.Runs(10)
	require.Len(t, runs, 3)
	assert.Equal(t, 4, runs[0].Details)
	assert.Len(t, svc.Runs(1), 1)
}

func TestEnqueueAndSchedule(t *testing.T) {
	rec := &recorder{}
	svc := New(rec)
	svc.Every(JobSessionSweep, 10*time.Millisecond, func(context.Context) (any, error) { return 0, nil })
	svc.Every("disabled", 0, func(context.Context) (any, error) { return nil, nil })
	require.Len(t, svc.schedules, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	done := make(chan struct{})
	require.True(t, svc.Enqueue(JobDatasetReload, func(context.Context) (any, error) {
		close(done)
		return nil, nil
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queued job did not run")
	}

	deadline := time.Now().Add(time.Second)
	for rec.count("session_sweep:completed") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("scheduled job did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
