package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

const todoColumns = `id, user_id, title, priority, status, due, created_at`

// SaveTodo inserts one todo item.
func (s *SQLiteStorage) SaveTodo(ctx context.Context, todo *model.TodoItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTodo(todo); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		todo.ID,
		todo.UserID,
		todo.Title,
		string(todo.Priority),
		string(todo.Status),
		nullableTime(todo.Due),
		todo.CreatedAt,
	)
	if err != nil {
		return wrapQueryError("save todo", err)
	}
	return nil
}

// UpdateTodo rewrites the mutable fields of an existing todo.
func (s *SQLiteStorage) UpdateTodo(ctx context.Context, todo *model.TodoItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTodo(todo); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, priority = ?, status = ?, due = ?
		WHERE id = ?
	`,
		todo.Title,
		string(todo.Priority),
		string(todo.Status),
		nullableTime(todo.Due),
		todo.ID,
	)
	if err != nil {
		return wrapQueryError("update todo", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: todo %s", common.ErrNotFound, todo.ID)
	}
	return nil
}

// GetTodoByID returns one todo by its identifier.
func (s *SQLiteStorage) GetTodoByID(ctx context.Context, id string) (*model.TodoItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+todoColumns+` FROM todos WHERE id = ?
	`, id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: todo %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// GetTodos returns a user's todos matching the filter. Todos with due
// dates come first, soonest first.
func (s *SQLiteStorage) GetTodos(ctx context.Context, userID string, filter service.TodoFilter) ([]model.TodoItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []any{userID}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(filter.Priority))
	}
	if filter.DueOn != nil {
		dayStart := time.Date(filter.DueOn.Year(), filter.DueOn.Month(), filter.DueOn.Day(), 0, 0, 0, 0, filter.DueOn.Location())
		query += ` AND due >= ? AND due < ?`
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
	}
	query += ` ORDER BY due IS NULL, due, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError("query todos", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTodos(rows)
}

// FindTodosByTitle returns a user's todos whose title contains the given
// fragment, case-insensitively. Completed todos are excluded so updates
// resolve against actionable items.
func (s *SQLiteStorage) FindTodosByTitle(ctx context.Context, userID, title string) ([]model.TodoItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(title, "title"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE user_id = ? AND status != ? AND title LIKE ? COLLATE NOCASE
		ORDER BY created_at
	`, userID, string(model.TodoDone), "%"+title+"%")
	if err != nil {
		return nil, wrapQueryError("find todos", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTodos(rows)
}

func collectTodos(rows *sql.Rows) ([]model.TodoItem, error) {
	var todos []model.TodoItem
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func scanTodo(row rowScanner) (model.TodoItem, error) {
	var (
		todo     model.TodoItem
		priority string
		status   string
		due      sql.NullTime
	)
	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&priority,
		&status,
		&due,
		&todo.CreatedAt,
	)
	if err != nil {
		return model.TodoItem{}, err
	}

	todo.Priority = model.TodoPriority(priority)
	todo.Status = model.TodoStatus(status)
	if due.Valid {
		t := due.Time
		todo.Due = &t
	}
	return todo, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
