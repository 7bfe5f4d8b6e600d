package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// dbTime stores a time as fixed-width UTC text. The zero time is NULL.
type dbTime struct {
	time.Time
}

// Value implements driver.Valuer.
func (t dbTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(timeLayout), nil
}

// Scan implements sql.Scanner. Unparseable text scans as the zero time.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case string:
		t.Time, _ = time.Parse(time.RFC3339Nano, v)
	case []byte:
		t.Time, _ = time.Parse(time.RFC3339Nano, string(v))
	case time.Time:
		t.Time = v
	default:
		return fmt.Errorf("cannot scan %T into a time", src)
	}
	return nil
}

// schedulerStore keeps scheduled_tasks and task_results.
type schedulerStore struct {
	store *Store
}

const taskColumns = `id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled`

const resultColumns = `run_id, task_id, started_at, ended_at, success, error, items_processed`

// GetTask returns nil and no error for an unknown id.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns every task ordered by id.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	return collect(rows, scanTask)
}

// SaveTask inserts or replaces a task by id.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled`,
		task.ID, task.Name, int64(task.Interval/time.Second),
		dbTime{task.LastRun}, dbTime{task.NextRun},
		sql.NullString{String: task.LastError, Valid: task.LastError != ""},
		dbTime{task.LastSuccess}, task.Enabled)
	if err != nil {
		return fmt.Errorf("saving scheduled task: %w", err)
	}
	return nil
}

// RecordResult appends a run. Run ids are unique.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("%w: result without run id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx,
		`INSERT INTO task_results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.TaskID,
		dbTime{result.StartedAt}, dbTime{result.EndedAt},
		result.Success,
		sql.NullString{String: result.Error, Valid: result.Error != ""},
		result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("recording task result: %w", err)
	}
	return nil
}

// GetTaskHistory returns up to limit runs of taskID, newest first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+resultColumns+` FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying task history: %w", err)
	}
	return collect(rows, scanResult)
}

// PruneHistory keeps the newest keep runs of each task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rn
				FROM task_results
			) WHERE rn <= ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.ScheduledTask, error) {
	var (
		task                       domain.ScheduledTask
		seconds                    int64
		lastRun, nextRun, lastSucc dbTime
		lastError                  sql.NullString
	)
	err := row.Scan(&task.ID, &task.Name, &seconds,
		&lastRun, &nextRun, &lastError, &lastSucc, &task.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return task, err
	}
	if err != nil {
		return task, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(seconds) * time.Second
	task.LastRun = lastRun.Time
	task.NextRun = nextRun.Time
	task.LastError = lastError.String
	task.LastSuccess = lastSucc.Time
	return task, nil
}

func scanResult(row rowScanner) (domain.TaskResult, error) {
	var (
		result         domain.TaskResult
		started, ended dbTime
		errMsg         sql.NullString
	)
	if err := row.Scan(&result.RunID, &result.TaskID, &started, &ended,
		&result.Success, &errMsg, &result.ItemsProcessed); err != nil {
		return result, fmt.Errorf("scanning task result: %w", err)
	}
	result.StartedAt = started.Time
	result.EndedAt = ended.Time
	result.Error = errMsg.String
	return result, nil
}

// collect scans every row and closes rows.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
