package services

import (
	"context"
	"sync"
	"time"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// defaultTick is how often the scheduler checks for due tasks.
const defaultTick = time.Minute

// taskFunc fires a task. It reports false if the task declined to start,
// in which case it is retried on the next tick instead of after its
// interval.
type taskFunc func(ctx context.Context) bool

// Scheduler periodically fires background tasks. Task state survives
// restarts through the SchedulerStore.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	clock  driven.Clock
	tick   time.Duration
	tasks  map[string]taskFunc
	waits  []func()

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. gitSync may be nil, in which case the
// git sync task is never fired.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	gitSync driving.GitSyncTrigger,
) *Scheduler {
	s := &Scheduler{
		config: config,
		store:  store,
		clock:  driven.SystemClock{},
		tick:   defaultTick,
		tasks:  make(map[string]taskFunc),
	}
	if gitSync != nil {
		s.tasks[domain.TaskIDGitSync] = gitSync.Trigger
		s.waits = append(s.waits, gitSync.Wait)
	}
	return s
}

// Start runs the scheduler loop. It blocks until ctx is cancelled, which
// is returned as the error, or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if !s.config.Enabled {
		logger.Info("scheduler disabled")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		}
	}

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}
	return s.run(ctx, stopCh)
}

// Stop ends the loop and waits for fired tasks to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	for _, wait := range s.waits {
		wait()
	}
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDGitSync); taskCfg.Enabled {
		return s.ensureTask(ctx, domain.TaskIDGitSync, "Git Sync", taskCfg)
	}
	return nil
}

// ensureTask creates a task or applies a changed interval to it. New
// tasks are due immediately.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	switch {
	case task == nil:
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			NextRun:  now,
		}
	case task.Interval != cfg.Interval:
		task.Interval = cfg.Interval
		task.NextRun = now.Add(cfg.Interval)
	}
	task.Enabled = cfg.Enabled

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.runDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runDueTasks(ctx)
		}
	}
}

// runDueTasks fires every enabled task whose NextRun has passed.
func (s *Scheduler) runDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.clock.Now()
	for i := range tasks {
		task := &tasks[i]
		if task.Enabled && !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask fires a single task and advances its schedule.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	fire, ok := s.tasks[task.ID]
	if !ok {
		logger.Warn("scheduler: no handler for task %s", task.ID)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	started := fire(ctx)
	now := s.clock.Now()
	task.LastRun = now
	if started {
		task.LastError = ""
		task.LastSuccess = now
		task.NextRun = now.Add(task.Interval)
	} else {
		logger.Debug("scheduler: %s declined, retrying in %s", task.ID, s.tick)
		task.LastError = "trigger rejected"
		task.NextRun = now.Add(s.tick)
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Error("scheduler: failed to save task %s: %v", task.ID, err)
	}
}
