// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper is the part of the sessions store the cleanup worker uses.
type SessionSweeper interface {
	CloseInactive(ctx context.Context, threshold time.Duration) (int64, error)
	CloseExpired(ctx context.Context) (int64, error)
}

// SessionCleanup is a background worker that closes idle and expired sessions.
type SessionCleanup struct {
	sessions          SessionSweeper
	log               *zap.Logger
	interval          time.Duration
	inactiveThreshold time.Duration
	stopCh            chan struct{}
	stopOnce          sync.Once
	wg                sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - sweeper: the sessions store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - inactiveThreshold: how long a session must be idle before closing (e.g., 30 minutes)
func NewSessionCleanup(sweeper SessionSweeper, logger *zap.Logger, interval, inactiveThreshold time.Duration) *SessionCleanup {
	return &SessionCleanup{
		sessions:          sweeper,
		log:               logger,
		interval:          interval,
		inactiveThreshold: inactiveThreshold,
		stopCh:            make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("inactive_threshold", w.inactiveThreshold))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call twice.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(context.Background())
		}
	}
}

// RunOnce performs a single sweep.
func (w *SessionCleanup) RunOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	if w.inactiveThreshold > 0 {
		n, err := w.sessions.CloseInactive(ctx, w.inactiveThreshold)
		if err != nil {
			w.log.Error("failed to close inactive sessions", zap.Error(err))
		} else if n > 0 {
			w.log.Info("closed inactive sessions", zap.Int64("count", n))
		}
	}

	n, err := w.sessions.CloseExpired(ctx)
	if err != nil {
		w.log.Error("failed to close expired sessions", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("closed expired sessions", zap.Int64("count", n))
	}
}
