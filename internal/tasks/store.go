package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pomodesk/internal/core/model"

	"github.com/google/uuid"
)

// ErrTaskNotFound indicates that no task has the requested ID.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidStatus indicates an empty or unknown status value.
var ErrInvalidStatus = errors.New("invalid task status")

// Store persists tasks in the application sqlite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore prepares the task tables.
func NewStore(db *sql.DB) (*Store, error) {
	store := &Store{db: db, now: time.Now}
	if err := store.initTables(); err != nil {
		return nil, err
	}
	return store, nil
}

func (store *Store) initTables() error {
	_, err := store.db.Exec(`
        CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}

	_, err = store.db.Exec(`
        CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            phase TEXT NOT NULL,
            task_id TEXT,
            completed_at DATETIME NOT NULL,
            duration_seconds INTEGER NOT NULL,
            skipped INTEGER NOT NULL DEFAULT 0
        )
    `)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

// Add creates a task in the todo state.
func (store *Store) Add(ctx context.Context, name, description string) (model.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Task{}, errors.New("task name is empty")
	}

	now := store.now().UTC()
	task := model.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      model.TaskStatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := store.db.ExecContext(ctx, `
        INSERT INTO tasks (id, name, description, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, task.ID, task.Name, task.Description, task.Status, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// Get returns the task with the given ID.
func (store *Store) Get(ctx context.Context, id string) (model.Task, error) {
	row := store.db.QueryRowContext(ctx, `
        SELECT id, name, description, status, created_at, updated_at
        FROM tasks WHERE id = ?
    `, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task, err
}

// List returns tasks ordered by creation time. An empty status lists every task.
func (store *Store) List(ctx context.Context, status string) ([]model.Task, error) {
	query := `SELECT id, name, description, status, created_at, updated_at FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, name`

	rows, err := store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus applies a status update and returns the updated task. Its
// signature matches the timer's completion hook.
func (store *Store) UpdateStatus(ctx context.Context, id string, update model.StatusUpdate) (model.Task, error) {
	status := strings.TrimSpace(update.Status)
	if !model.ValidTaskStatus(status) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	result, err := store.db.ExecContext(ctx, `
        UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
    `, status, store.now().UTC(), id)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	if affected == 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return store.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	if err := row.Scan(&task.ID, &task.Name, &task.Description, &task.Status, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("scan task: %w", err)
	}
	return task, nil
}
