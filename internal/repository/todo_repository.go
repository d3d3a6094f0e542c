package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/lofi-playground/internal/domain"
)

// TodoRepository defines the data operations on todos. Every lookup is scoped
// to the owning user.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, userID, id string) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo, changes map[string]any) error
	Delete(ctx context.Context, userID, id string) (int64, error)
	DeleteCompleted(ctx context.Context, userID string) (int64, error)
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// FindByID returns gorm.ErrRecordNotFound when the todo does not exist or
// belongs to another user.
func (r *gormTodoRepository) FindByID(ctx context.Context, userID, id string) (*domain.Todo, error) {
	var todo domain.Todo
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo)
	if result.Error != nil {
		return nil, result.Error
	}
	return &todo, nil
}

// ListByUser returns the user's todos oldest first.
func (r *gormTodoRepository) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	var todos []domain.Todo
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&todos)
	if result.Error != nil {
		return nil, result.Error
	}
	return todos, nil
}

// Update writes only the given columns. A map is used rather than a struct so
// that completed=false is not skipped as a zero value.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo, changes map[string]any) error {
	return r.db.WithContext(ctx).
		Model(todo).
		Where("user_id = ?", todo.UserID).
		Updates(changes).Error
}

func (r *gormTodoRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Todo{})
	return result.RowsAffected, result.Error
}

func (r *gormTodoRepository) DeleteCompleted(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Delete(&domain.Todo{})
	return result.RowsAffected, result.Error
}
