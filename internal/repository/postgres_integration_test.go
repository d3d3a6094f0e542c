//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/lofi-playground/internal/config"
	"github.com/Tomlord1122/lofi-playground/internal/database"
	"github.com/Tomlord1122/lofi-playground/internal/domain"
)

func mustStartPostgres(t *testing.T) database.Service {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("lofi"),
		postgres.WithUsername("lofi"),
		postgres.WithPassword("lofi"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.New(config.Database{Driver: "postgres", URL: dsn, Name: "lofi"}, nil)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if stats := db.Health(); stats["status"] != "up" {
		t.Fatalf("Expected healthy database, got %v", stats)
	}
	return db
}

func TestPostgresTodoLifecycle(t *testing.T) {
	db := mustStartPostgres(t)
	repo := NewGormTodoRepository(db.GetDB())
	ctx := context.Background()

	todo := &domain.Todo{Name: "ship it", UserID: "u1"}
	if err := repo.Create(ctx, todo); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Update(ctx, todo, map[string]any{"completed": true}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := repo.Create(ctx, &domain.Todo{Name: "keep", UserID: "u1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err := repo.DeleteCompleted(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteCompleted() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row deleted, got %d", n)
	}

	todos, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(todos) != 1 || todos[0].Name != "keep" {
		t.Errorf("Unexpected remaining todos: %+v", todos)
	}
}
