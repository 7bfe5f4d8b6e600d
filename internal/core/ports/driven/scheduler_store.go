package driven

import (
	"context"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// SchedulerStore persists scheduled task state and git sync run history.
type SchedulerStore interface {
	// GetTask retrieves a scheduled task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all scheduled tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordResult logs a finished run.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns recent results for a task, most recent first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps only the most recent 'keep' results per task.
	PruneHistory(ctx context.Context, keep int) error
}
