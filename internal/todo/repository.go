package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-todo-api/internal/database"
)

var ErrNotFound = errors.New("todo not found")

// Repository handles todo data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new todo owned by the given user
func (r *Repository) Create(ctx context.Context, ownerID int64, text string, completed bool) (*database.Todo, error) {
	dbTodo := &database.Todo{
		Text:      text,
		Completed: completed,
		OwnerID:   ownerID,
	}

	_, err := r.db.NewInsert().
		Model(dbTodo).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return dbTodo, nil
}

// GetByID retrieves a todo with its owner loaded
func (r *Repository) GetByID(ctx context.Context, id int64) (*database.Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewSelect().
		Model(dbTodo).
		Relation("Owner").
		Where("t.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return dbTodo, nil
}

// List retrieves todos ordered by id with offset/limit pagination
func (r *Repository) List(ctx context.Context, offset, limit int) ([]*database.Todo, error) {
	todos := make([]*database.Todo, 0)
	err := r.db.NewSelect().
		Model(&todos).
		Order("t.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, nil
}

// ListByOwner retrieves the todos owned by a user
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*database.Todo, error) {
	todos := make([]*database.Todo, 0)
	err := r.db.NewSelect().
		Model(&todos).
		Where("t.owner_id = ?", ownerID).
		Order("t.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list todos by owner: %w", err)
	}

	return todos, nil
}

// Update replaces a todo's text and completed flag
func (r *Repository) Update(ctx context.Context, id int64, text string, completed bool) (*database.Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewUpdate().
		Model(dbTodo).
		Set("text = ?", text).
		Set("completed = ?", completed).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return dbTodo, nil
}

// Delete removes a todo by id
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
