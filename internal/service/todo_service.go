package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/domain"
	"github.com/Tomlord1122/lofi-playground/internal/repository"
	"github.com/Tomlord1122/lofi-playground/internal/validation"
)

// TodoService defines the todo procedures. Every method acts on behalf of
// userID, which comes from the caller's session; an empty userID fails with
// domain.ErrUnauthorized.
type TodoService interface {
	// GetAll returns the caller's todos, oldest first.
	GetAll(ctx context.Context, userID string) ([]api.Todo, error)

	// Create stores a new, uncompleted todo.
	Create(ctx context.Context, userID string, in api.CreateTodoInput) (*api.Todo, error)

	// Update applies a partial patch. Completing a todo never deletes it.
	Update(ctx context.Context, userID string, in api.UpdateTodoInput) (*api.Todo, error)

	// Delete removes one todo and returns it as it was.
	Delete(ctx context.Context, userID, id string) (*api.Todo, error)

	// DeleteMany removes all of the caller's completed todos.
	DeleteMany(ctx context.Context, userID string) (*api.DeleteManyResult, error)
}

type todoService struct {
	repo   repository.TodoRepository
	logger *zap.Logger
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository, logger *zap.Logger) TodoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &todoService{
		repo:   repo,
		logger: logger,
	}
}

func (s *todoService) GetAll(ctx context.Context, userID string) ([]api.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	todos, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list_todos_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("failed to retrieve todo items")
	}

	responses := make([]api.Todo, 0, len(todos))
	for i := range todos {
		responses = append(responses, toResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) Create(ctx context.Context, userID string, in api.CreateTodoInput) (*api.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	newTodo := &domain.Todo{
		Name:      in.Name,
		Completed: false,
		UserID:    userID,
	}
	if err := s.repo.Create(ctx, newTodo); err != nil {
		s.logger.Error("create_todo_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("failed to create todo item")
	}

	s.logger.Debug("todo_created", zap.String("todo_id", newTodo.ID), zap.String("user_id", userID))
	resp := toResponse(newTodo)
	return &resp, nil
}

func (s *todoService) Update(ctx context.Context, userID string, in api.UpdateTodoInput) (*api.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if in.Name != nil && *in.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}

	existing, err := s.find(ctx, userID, in.ID)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any, 2)
	if in.Name != nil && *in.Name != existing.Name {
		changes["name"] = *in.Name
	}
	if in.Completed != nil && *in.Completed != existing.Completed {
		changes["completed"] = *in.Completed
	}
	if len(changes) == 0 {
		resp := toResponse(existing)
		return &resp, nil
	}

	if err := s.repo.Update(ctx, existing, changes); err != nil {
		s.logger.Error("update_todo_failed", zap.String("todo_id", in.ID), zap.Error(err))
		return nil, errors.New("failed to update todo item")
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Completed != nil {
		existing.Completed = *in.Completed
	}
	resp := toResponse(existing)
	return &resp, nil
}

func (s *todoService) Delete(ctx context.Context, userID, id string) (*api.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	existing, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	n, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		s.logger.Error("delete_todo_failed", zap.String("todo_id", id), zap.Error(err))
		return nil, errors.New("failed to delete todo item")
	}
	if n == 0 {
		// removed concurrently between lookup and delete
		return nil, fmt.Errorf("%w: todo with ID %s", domain.ErrNotFound, id)
	}

	resp := toResponse(existing)
	return &resp, nil
}

func (s *todoService) DeleteMany(ctx context.Context, userID string) (*api.DeleteManyResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	n, err := s.repo.DeleteCompleted(ctx, userID)
	if err != nil {
		s.logger.Error("delete_completed_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.New("failed to delete completed todo items")
	}
	return &api.DeleteManyResult{Count: n}, nil
}

func (s *todoService) find(ctx context.Context, userID, id string) (*domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: todo with ID %s", domain.ErrNotFound, id)
		}
		s.logger.Error("find_todo_failed", zap.String("todo_id", id), zap.Error(err))
		return nil, errors.New("failed to retrieve todo item")
	}
	return todo, nil
}

func toResponse(t *domain.Todo) api.Todo {
	return api.Todo{
		ID:        t.ID,
		Name:      t.Name,
		Completed: t.Completed,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
