package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSweeper struct {
	mu          sync.Mutex
	inactive    int
	expired     int
	threshold   time.Duration
	inactiveErr error
}

func (f *fakeSweeper) CloseInactive(_ context.Context, threshold time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inactive++
	f.threshold = threshold
	return 2, f.inactiveErr
}

func (f *fakeSweeper) CloseExpired(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired++
	return 1, nil
}

func (f *fakeSweeper) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inactive, f.expired
}

func TestSessionCleanup_RunOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := &fakeSweeper{}
	w := NewSessionCleanup(f, zap.New(core), time.Minute, 30*time.Minute)

	w.RunOnce(context.Background())

	inactive, expired := f.counts()
	if inactive != 1 || expired != 1 {
		t.Errorf("sweeps: inactive=%d expired=%d, want 1 and 1", inactive, expired)
	}
	if f.threshold != 30*time.Minute {
		t.Errorf("threshold: got %v", f.threshold)
	}
	if logs.FilterMessage("closed inactive sessions").Len() != 1 {
		t.Error("expected inactive log entry")
	}
	if logs.FilterMessage("closed expired sessions").Len() != 1 {
		t.Error("expected expired log entry")
	}
}

func TestSessionCleanup_InactiveErrorStillSweepsExpired(t *testing.T) {
	f := &fakeSweeper{inactiveErr: errors.New("db down")}
	w := NewSessionCleanup(f, zap.NewNop(), time.Minute, time.Minute)

	w.RunOnce(context.Background())

	if _, expired := f.counts(); expired != 1 {
		t.Errorf("expired sweeps: got %d, want 1", expired)
	}
}

func TestSessionCleanup_NoInactiveThreshold(t *testing.T) {
	f := &fakeSweeper{}
	w := NewSessionCleanup(f, zap.NewNop(), time.Minute, 0)

	w.RunOnce(context.Background())

	if inactive, _ := f.counts(); inactive != 0 {
		t.Errorf("inactive sweeps: got %d, want 0", inactive)
	}
}

func TestSessionCleanup_StartStop(t *testing.T) {
	f := &fakeSweeper{}
	w := NewSessionCleanup(f, zap.NewNop(), 10*time.Millisecond, time.Minute)

	w.Start()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, expired := f.counts(); expired > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if _, expired := f.counts(); expired == 0 {
		t.Error("worker never ran")
	}
}
