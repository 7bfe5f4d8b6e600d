package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/storage/memory"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// mockGitSyncTrigger implements driving.GitSyncTrigger for testing.
type mockGitSyncTrigger struct {
	mu       sync.Mutex
	triggers int
	accept   bool
}

func (m *mockGitSyncTrigger) Trigger(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers++
	return m.accept
}

func (m *mockGitSyncTrigger) Wait() {}

func (m *mockGitSyncTrigger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggers
}

func newTestScheduler(config domain.SchedulerConfig, trigger *mockGitSyncTrigger) (*Scheduler, *memory.SchedulerStore, *fakeClock) {
	store := memory.NewSchedulerStore()
	clock := newFakeClock()
	s := NewScheduler(config, store, trigger)
	s.clock = clock
	s.tick = 10 * time.Millisecond
	return s, store, clock
}

func TestScheduler_StartStop(t *testing.T) {
	trigger := &mockGitSyncTrigger{accept: true}
	scheduler, _, _ := newTestScheduler(domain.DefaultSchedulerConfig(), trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return trigger.count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	wg.Wait()
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler, _, _ := newTestScheduler(domain.DefaultSchedulerConfig(), &mockGitSyncTrigger{})

	require.NoError(t, scheduler.Stop())
}

func TestScheduler_DoubleStart(t *testing.T) {
	scheduler, _, _ := newTestScheduler(domain.DefaultSchedulerConfig(), &mockGitSyncTrigger{accept: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	assert.Eventually(t, func() bool {
		scheduler.mu.Lock()
		defer scheduler.mu.Unlock()
		return scheduler.running
	}, time.Second, 5*time.Millisecond)

	// Second start returns immediately.
	assert.NoError(t, scheduler.Start(context.Background()))

	cancel()
	wg.Wait()
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_Disabled(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	config.Enabled = false
	trigger := &mockGitSyncTrigger{accept: true}
	scheduler, store, _ := newTestScheduler(config, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, trigger.count())
	tasks, err := store.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestScheduler_InitialiseTasks(t *testing.T) {
	scheduler, store, clock := newTestScheduler(domain.DefaultSchedulerConfig(), &mockGitSyncTrigger{})
	ctx := context.Background()

	require.NoError(t, scheduler.initialiseTasks(ctx))

	task, err := store.GetTask(ctx, domain.TaskIDGitSync)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Git Sync", task.Name)
	assert.True(t, task.Enabled)
	assert.Equal(t, clock.Now(), task.NextRun)
}

func TestScheduler_EnsureTask_UpdateInterval(t *testing.T) {
	scheduler, store, clock := newTestScheduler(domain.DefaultSchedulerConfig(), &mockGitSyncTrigger{})
	ctx := context.Background()

	taskCfg := domain.TaskConfig{Enabled: true, Interval: time.Hour}
	require.NoError(t, scheduler.ensureTask(ctx, "test-task", "Test Task", taskCfg))

	taskCfg.Interval = 2 * time.Hour
	require.NoError(t, scheduler.ensureTask(ctx, "test-task", "Test Task", taskCfg))

	task, err := store.GetTask(ctx, "test-task")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, task.Interval)
	assert.Equal(t, clock.Now().Add(2*time.Hour), task.NextRun)
}

func TestScheduler_CheckAndRunDueTasks(t *testing.T) {
	trigger := &mockGitSyncTrigger{accept: true}
	scheduler, store, clock := newTestScheduler(domain.DefaultSchedulerConfig(), trigger)
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDGitSync,
		Name:     "Git Sync",
		Interval: time.Hour,
		NextRun:  clock.Now().Add(-time.Minute),
		Enabled:  true,
	}))

	scheduler.runDueTasks(ctx)
	assert.Equal(t, 1, trigger.count())

	task, err := store.GetTask(ctx, domain.TaskIDGitSync)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), task.LastRun)
	assert.Equal(t, clock.Now(), task.LastSuccess)
	assert.Equal(t, clock.Now().Add(time.Hour), task.NextRun)
	assert.Empty(t, task.LastError)

	// Not due again until the interval passes.
	scheduler.runDueTasks(ctx)
	assert.Equal(t, 1, trigger.count())

	clock.Advance(time.Hour)
	scheduler.runDueTasks(ctx)
	assert.Equal(t, 2, trigger.count())
}

func TestScheduler_RejectedTriggerRetriesNextTick(t *testing.T) {
	trigger := &mockGitSyncTrigger{accept: false}
	scheduler, store, clock := newTestScheduler(domain.DefaultSchedulerConfig(), trigger)
	ctx := context.Background()

	task := &domain.ScheduledTask{ID: domain.TaskIDGitSync, Interval: time.Hour, Enabled: true}
	scheduler.runTask(ctx, task)

	saved, err := store.GetTask(ctx, domain.TaskIDGitSync)
	require.NoError(t, err)
	assert.Equal(t, "trigger rejected", saved.LastError)
	assert.Equal(t, clock.Now().Add(scheduler.tick), saved.NextRun)
	assert.True(t, saved.LastSuccess.IsZero())
}

func TestScheduler_WithoutGitSync(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), memory.NewSchedulerStore(), nil)
	ctx := context.Background()

	scheduler.runTask(ctx, &domain.ScheduledTask{ID: domain.TaskIDGitSync, Enabled: true})

	assert.NoError(t, scheduler.Stop())
}

func TestScheduler_RunTask_UnknownTaskID(t *testing.T) {
	scheduler, store, _ := newTestScheduler(domain.DefaultSchedulerConfig(), &mockGitSyncTrigger{})
	ctx := context.Background()

	scheduler.runTask(ctx, &domain.ScheduledTask{ID: "unknown-task", Enabled: true})

	task, err := store.GetTask(ctx, "unknown-task")
	require.NoError(t, err)
	assert.Nil(t, task)
}
