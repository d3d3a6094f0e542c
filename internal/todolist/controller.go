// Package todolist binds the todo procedures to the optimistic query engine.
// Every mutation updates the cached list immediately, calls the server in the
// background and reconciles the list once no mutation is left in flight.
package todolist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/cache"
	"github.com/Tomlord1122/lofi-playground/internal/query"
)

const (
	// QueryKey is the cache key of the todo list.
	QueryKey = api.ProcTodoGetAll

	// DraftPrefix marks rows created optimistically and not yet confirmed.
	DraftPrefix = "draft-"

	// DefaultStaleTime is how long a fetched list is served without
	// refetching on Refresh.
	DefaultStaleTime = 3 * time.Second
)

var (
	ErrEmptyName = errors.New("name must not be empty")
	ErrUnknownID = errors.New("no such todo")
	ErrDraft     = errors.New("todo is still being saved")
)

// TodoAPI is the server side of the todo procedures.
type TodoAPI interface {
	GetAll(ctx context.Context) ([]api.Todo, error)
	Create(ctx context.Context, in api.CreateTodoInput) (*api.Todo, error)
	Update(ctx context.Context, in api.UpdateTodoInput) (*api.Todo, error)
	Delete(ctx context.Context, id string) (*api.Todo, error)
	DeleteMany(ctx context.Context) (*api.DeleteManyResult, error)
}

// Controller exposes the todo list and its mutations.
type Controller struct {
	rpc       TodoAPI
	queries   *query.Client[[]api.Todo]
	notifier  Notifier
	staleTime time.Duration
	logger    *zap.Logger
}

// Option configures a Controller.
type Option func(*settings)

type settings struct {
	rollback  bool
	staleTime time.Duration
	logger    *zap.Logger
}

// WithRollback restores the previous list when a mutation fails instead of
// waiting for reconciliation.
func WithRollback(enabled bool) Option {
	return func(s *settings) { s.rollback = enabled }
}

// WithStaleTime overrides DefaultStaleTime.
func WithStaleTime(d time.Duration) Option {
	return func(s *settings) { s.staleTime = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a Controller. A nil notifier discards toasts.
func New(rpc TodoAPI, store cache.Store[[]api.Todo], notifier Notifier, opts ...Option) *Controller {
	s := settings{staleTime: DefaultStaleTime, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	c := &Controller{
		rpc:       rpc,
		notifier:  notifier,
		staleTime: s.staleTime,
		logger:    s.logger,
		queries:   query.New(store, query.WithRollback(s.rollback), query.WithLogger(s.logger)),
	}
	c.queries.Register(QueryKey, func(ctx context.Context) ([]api.Todo, error) {
		return rpc.GetAll(ctx)
	})
	return c
}

// Todos returns a copy of the cached list.
func (c *Controller) Todos() []api.Todo {
	todos, _ := c.queries.Data(QueryKey)
	return append([]api.Todo(nil), todos...)
}

// Changed signals whenever the cached list changes.
func (c *Controller) Changed() <-chan struct{} {
	return c.queries.Changed()
}

// IsMutating returns the number of mutations in flight.
func (c *Controller) IsMutating() int {
	return c.queries.IsMutating()
}

// Refresh fetches the list from the server. Unless force is set it is a
// no-op while a mutation is in flight or while the cached list is fresher
// than the stale time.
func (c *Controller) Refresh(ctx context.Context, force bool) error {
	if !force {
		if c.queries.IsMutating() > 0 {
			return nil
		}
		if _, ok := c.queries.Data(QueryKey); ok && time.Since(c.queries.FetchedAt(QueryKey)) < c.staleTime {
			return nil
		}
	}

	err := c.queries.Fetch(ctx, QueryKey)
	if errors.Is(err, query.ErrCanceled) {
		return nil
	}
	if err != nil {
		c.notifier.Error(errorMessage(err))
		return err
	}
	return nil
}

// Create adds a todo. A draft row appears in the list before Create returns.
func (c *Controller) Create(ctx context.Context, name string) *query.Pending {
	if name == "" {
		return c.reject(ErrEmptyName)
	}

	now := time.Now()
	draft := api.Todo{
		ID:        DraftPrefix + uuid.NewString(),
		Name:      name,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p := c.queries.Mutate(ctx, query.Mutation[[]api.Todo]{
		Key: QueryKey,
		Apply: func(todos []api.Todo) []api.Todo {
			out := make([]api.Todo, 0, len(todos)+1)
			return append(append(out, todos...), draft)
		},
		Run: func(ctx context.Context) error {
			_, err := c.rpc.Create(ctx, api.CreateTodoInput{Name: name})
			return err
		},
		OnError: c.reportError(api.ProcTodoCreate),
	})
	c.notifier.Success("Todo added.")
	return p
}

// Toggle flips the completion flag of id.
func (c *Controller) Toggle(ctx context.Context, id string) *query.Pending {
	todo, ok := c.find(id)
	if !ok {
		return c.reject(fmt.Errorf("%w: %s", ErrUnknownID, id))
	}
	completed := !todo.Completed
	return c.Update(ctx, api.UpdateTodoInput{ID: id, Completed: &completed})
}

// SetCompleted sets the completion flag of id.
func (c *Controller) SetCompleted(ctx context.Context, id string, completed bool) *query.Pending {
	return c.Update(ctx, api.UpdateTodoInput{ID: id, Completed: &completed})
}

// Rename changes the name of id to name.
func (c *Controller) Rename(ctx context.Context, id, name string) *query.Pending {
	if name == "" {
		return c.reject(ErrEmptyName)
	}
	return c.Update(ctx, api.UpdateTodoInput{ID: id, Name: &name})
}

// Update applies a partial patch. Only the supplied fields change, in the
// cache and on the server.
func (c *Controller) Update(ctx context.Context, in api.UpdateTodoInput) *query.Pending {
	if err := c.checkID(in.ID); err != nil {
		return c.reject(err)
	}
	if in.Name != nil && *in.Name == "" {
		return c.reject(ErrEmptyName)
	}

	p := c.queries.Mutate(ctx, query.Mutation[[]api.Todo]{
		Key: QueryKey,
		Apply: func(todos []api.Todo) []api.Todo {
			out := make([]api.Todo, len(todos))
			for i, t := range todos {
				if t.ID == in.ID {
					if in.Name != nil {
						t.Name = *in.Name
					}
					if in.Completed != nil {
						t.Completed = *in.Completed
					}
					t.UpdatedAt = time.Now()
				}
				out[i] = t
			}
			return out
		},
		Run: func(ctx context.Context) error {
			_, err := c.rpc.Update(ctx, in)
			return err
		},
		OnError: c.reportError(api.ProcTodoUpdate),
	})

	if in.Name == nil && in.Completed != nil && *in.Completed {
		c.notifier.Success("Todo completed.")
	} else {
		c.notifier.Success("Todo updated.")
	}
	return p
}

// Delete removes id.
func (c *Controller) Delete(ctx context.Context, id string) *query.Pending {
	if err := c.checkID(id); err != nil {
		return c.reject(err)
	}

	p := c.queries.Mutate(ctx, query.Mutation[[]api.Todo]{
		Key: QueryKey,
		Apply: func(todos []api.Todo) []api.Todo {
			out := make([]api.Todo, 0, len(todos))
			for _, t := range todos {
				if t.ID != id {
					out = append(out, t)
				}
			}
			return out
		},
		Run: func(ctx context.Context) error {
			_, err := c.rpc.Delete(ctx, id)
			return err
		},
		OnError: c.reportError(api.ProcTodoDelete),
	})
	c.notifier.Success("Todo deleted.")
	return p
}

// ClearCompleted removes every completed todo.
func (c *Controller) ClearCompleted(ctx context.Context) *query.Pending {
	p := c.queries.Mutate(ctx, query.Mutation[[]api.Todo]{
		Key: QueryKey,
		Apply: func(todos []api.Todo) []api.Todo {
			out := make([]api.Todo, 0, len(todos))
			for _, t := range todos {
				if !t.Completed {
					out = append(out, t)
				}
			}
			return out
		},
		Run: func(ctx context.Context) error {
			_, err := c.rpc.DeleteMany(ctx)
			return err
		},
		OnError: c.reportError(api.ProcTodoDeleteMany),
	})
	c.notifier.Success("Completed todos cleared.")
	return p
}

// IsDraft reports whether id belongs to a row the server has not confirmed.
func IsDraft(id string) bool {
	return strings.HasPrefix(id, DraftPrefix)
}

func (c *Controller) find(id string) (api.Todo, bool) {
	todos, _ := c.queries.Data(QueryKey)
	for _, t := range todos {
		if t.ID == id {
			return t, true
		}
	}
	return api.Todo{}, false
}

func (c *Controller) checkID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownID)
	}
	if IsDraft(id) {
		return ErrDraft
	}
	return nil
}

func (c *Controller) reject(err error) *query.Pending {
	c.notifier.Error(errorMessage(err))
	return query.Failed(err)
}

func (c *Controller) reportError(proc string) func(error) {
	return func(err error) {
		c.logger.Warn("mutation_failed", zap.String("procedure", proc), zap.Error(err))
		c.notifier.Error(errorMessage(err))
	}
}

func errorMessage(err error) string {
	var rpcErr *api.Error
	if errors.As(err, &rpcErr) && rpcErr.Message != "" {
		return rpcErr.Message
	}
	switch {
	case errors.Is(err, ErrEmptyName):
		return "Name is required."
	case errors.Is(err, ErrDraft):
		return "Still saving, try again in a moment."
	case errors.Is(err, ErrUnknownID):
		return "Todo not found."
	}
	return err.Error()
}
