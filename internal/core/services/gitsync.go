package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Ensure GitSyncScheduler implements the interface.
var _ driving.GitSyncTrigger = (*GitSyncScheduler)(nil)

// historyRetention is how many git sync results are kept per task.
const historyRetention = 100

// GitSyncScheduler gates the git synchronizer. A run may start only if
// none is in flight and at least cooldown has passed since the last
// start. The start timestamp is taken when the gate opens, not when the
// run finishes.
type GitSyncScheduler struct {
	syncer   driven.GitSynchronizer
	clock    driven.Clock
	store    driven.SchedulerStore
	cooldown time.Duration

	mu       sync.Mutex
	last     time.Time
	started  bool
	inFlight bool
	wg       sync.WaitGroup
}

// NewGitSyncScheduler creates the gate. store may be nil, in which case
// run history is not recorded.
func NewGitSyncScheduler(
	syncer driven.GitSynchronizer,
	clock driven.Clock,
	store driven.SchedulerStore,
	cooldown time.Duration,
) *GitSyncScheduler {
	if cooldown <= 0 {
		cooldown = domain.DefaultGitSyncCooldown
	}
	if clock == nil {
		clock = driven.SystemClock{}
	}
	return &GitSyncScheduler{
		syncer:   syncer,
		clock:    clock,
		store:    store,
		cooldown: cooldown,
	}
}

// TryTrigger claims the gate at now. It returns false if a run is in
// flight or the previous start was less than the cooldown ago. A true
// result must be paired with a call to Done.
func (g *GitSyncScheduler) TryTrigger(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return false
	}
	if g.started && now.Sub(g.last) < g.cooldown {
		return false
	}

	g.last = now
	g.started = true
	g.inFlight = true
	return true
}

// Restore seeds the gate with the start time of a run from an earlier
// process, so the cooldown holds across restarts.
func (g *GitSyncScheduler) Restore(last time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started && !last.After(g.last) {
		return
	}
	g.last = last
	g.started = true
}

// Done releases the gate claimed by TryTrigger.
func (g *GitSyncScheduler) Done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = false
}

// Trigger starts a sync in the background if the gate allows it.
func (g *GitSyncScheduler) Trigger(ctx context.Context) bool {
	now := g.clock.Now()
	if !g.TryTrigger(now) {
		logger.Debug("git sync: trigger rejected")
		return false
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.Done()
		g.run(ctx, now)
	}()
	return true
}

// Wait blocks until the current run, if any, has finished.
func (g *GitSyncScheduler) Wait() {
	g.wg.Wait()
}

// Running reports whether a run is in flight.
func (g *GitSyncScheduler) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// LastStarted returns the start time of the most recent run.
func (g *GitSyncScheduler) LastStarted() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last, g.started
}

func (g *GitSyncScheduler) run(ctx context.Context, startedAt time.Time) {
	result := &domain.TaskResult{
		RunID:     uuid.New().String(),
		TaskID:    domain.TaskIDGitSync,
		StartedAt: startedAt,
	}

	logger.Info("git sync %s started", result.RunID)
	n, err := g.syncer.Sync(ctx)

	result.EndedAt = g.clock.Now()
	result.ItemsProcessed = n
	if err != nil {
		result.Error = err.Error()
		logger.Error("git sync %s: %v", result.RunID, err)
	} else {
		result.Success = true
		logger.Info("git sync %s finished: %d documents", result.RunID, n)
	}

	g.record(ctx, result)
}

func (g *GitSyncScheduler) record(ctx context.Context, result *domain.TaskResult) {
	if g.store == nil {
		return
	}
	if err := g.store.RecordResult(ctx, result); err != nil {
		logger.Warn("git sync: failed to record result: %v", err)
	}
	if err := g.store.PruneHistory(ctx, historyRetention); err != nil {
		logger.Warn("git sync: failed to prune history: %v", err)
	}
}
