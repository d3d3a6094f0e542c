package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/domain"
	"github.com/Tomlord1122/lofi-playground/internal/repository"
	"github.com/Tomlord1122/lofi-playground/internal/testutil"
)

func newTestService(t *testing.T) TodoService {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewTodoService(repository.NewGormTodoRepository(db.GetDB()), nil)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestCreateThenGetAll(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"read", "x", "a name with spaces"} {
		before, err := svc.GetAll(ctx, "u1")
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}

		created, err := svc.Create(ctx, "u1", api.CreateTodoInput{Name: name})
		if err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}

		after, err := svc.GetAll(ctx, "u1")
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if len(after) != len(before)+1 {
			t.Fatalf("Expected %d todos, got %d", len(before)+1, len(after))
		}

		matches := 0
		for _, todo := range after {
			if todo.ID == created.ID {
				matches++
				if todo.Name != name || todo.Completed {
					t.Errorf("Unexpected stored todo %+v", todo)
				}
			}
		}
		if matches != 1 {
			t.Errorf("Expected exactly one record with id %s, got %d", created.ID, matches)
		}
	}
}

func TestCreateEmptyNameRejected(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", api.CreateTodoInput{Name: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}

	todos, _ := svc.GetAll(ctx, "u1")
	if len(todos) != 0 {
		t.Errorf("Expected no records persisted, got %d", len(todos))
	}
}

func TestMissingSessionIsUnauthorized(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"getAll": func() error { _, err := svc.GetAll(ctx, ""); return err },
		"create": func() error { _, err := svc.Create(ctx, "", api.CreateTodoInput{Name: "n"}); return err },
		"update": func() error { _, err := svc.Update(ctx, "", api.UpdateTodoInput{ID: "x"}); return err },
		"delete": func() error { _, err := svc.Delete(ctx, "", "x"); return err },
		"deleteMany": func() error {
			_, err := svc.DeleteMany(ctx, "")
			return err
		},
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestUpdateCompletedKeepsRecord(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", api.CreateTodoInput{Name: "journal"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: created.ID, Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.Completed || updated.Name != "journal" {
		t.Errorf("Unexpected update result %+v", updated)
	}

	todos, _ := svc.GetAll(ctx, "u1")
	if len(todos) != 1 {
		t.Fatalf("Expected completed todo to remain, got %d todos", len(todos))
	}
	if !todos[0].Completed {
		t.Error("Expected stored todo to be completed")
	}
}

func TestUpdatePartial(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", api.CreateTodoInput{Name: "old"})
	if _, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: created.ID, Completed: boolPtr(true)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	renamed, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: created.ID, Name: strPtr("new")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if renamed.Name != "new" || !renamed.Completed {
		t.Errorf("Expected name changed and completed preserved, got %+v", renamed)
	}

	unchanged, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: created.ID})
	if err != nil {
		t.Fatalf("Update() with no fields error = %v", err)
	}
	if unchanged.Name != "new" || !unchanged.Completed {
		t.Errorf("Expected no-op update to return stored record, got %+v", unchanged)
	}
}

func TestUpdateEmptyNameRejected(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", api.CreateTodoInput{Name: "keep me"})
	_, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: created.ID, Name: strPtr("")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}

	todos, _ := svc.GetAll(ctx, "u1")
	if todos[0].Name != "keep me" {
		t.Errorf("Expected name untouched, got %q", todos[0].Name)
	}
}

func TestUnknownIDNotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", api.CreateTodoInput{Name: "mine"})

	tests := []struct {
		name string
		call func() error
	}{
		{"update unknown", func() error {
			_, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: "missing", Completed: boolPtr(true)})
			return err
		}},
		{"delete unknown", func() error {
			_, err := svc.Delete(ctx, "u1", "missing")
			return err
		}},
		{"update other user's todo", func() error {
			_, err := svc.Update(ctx, "u2", api.UpdateTodoInput{ID: created.ID, Name: strPtr("hijack")})
			return err
		}},
		{"delete other user's todo", func() error {
			_, err := svc.Delete(ctx, "u2", created.ID)
			return err
		}},
	}
	for _, tt := range tests {
		if err := tt.call(); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", tt.name, err)
		}
	}

	todos, _ := svc.GetAll(ctx, "u1")
	if len(todos) != 1 || todos[0].Name != "mine" || todos[0].Completed {
		t.Errorf("Expected no mutation, got %+v", todos)
	}
}

func TestDeleteReturnsRecord(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", api.CreateTodoInput{Name: "bye"})
	deleted, err := svc.Delete(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != created.ID || deleted.Name != "bye" {
		t.Errorf("Unexpected deleted record %+v", deleted)
	}

	if _, err := svc.Delete(ctx, "u1", created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected second delete to be ErrNotFound, got %v", err)
	}
}

func TestDeleteManyLeavesUncompleted(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	const total, done = 5, 3
	var ids []string
	for i := 0; i < total; i++ {
		todo, err := svc.Create(ctx, "u1", api.CreateTodoInput{Name: "task"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, todo.ID)
	}
	for _, id := range ids[:done] {
		if _, err := svc.Update(ctx, "u1", api.UpdateTodoInput{ID: id, Completed: boolPtr(true)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	other, _ := svc.Create(ctx, "u2", api.CreateTodoInput{Name: "someone else's"})
	_, _ = svc.Update(ctx, "u2", api.UpdateTodoInput{ID: other.ID, Completed: boolPtr(true)})

	res, err := svc.DeleteMany(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if res.Count != done {
		t.Errorf("Expected %d deleted, got %d", done, res.Count)
	}

	todos, _ := svc.GetAll(ctx, "u1")
	if len(todos) != total-done {
		t.Fatalf("Expected %d todos left, got %d", total-done, len(todos))
	}
	for _, todo := range todos {
		if todo.Completed {
			t.Errorf("Expected only uncompleted todos, got %+v", todo)
		}
	}

	others, _ := svc.GetAll(ctx, "u2")
	if len(others) != 1 {
		t.Errorf("Expected other user's completed todo to survive, got %d", len(others))
	}

	again, err := svc.DeleteMany(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteMany() second call error = %v", err)
	}
	if again.Count != 0 {
		t.Errorf("Expected no-op second deleteMany, got %d", again.Count)
	}
}
