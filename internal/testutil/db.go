package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/Tomlord1122/lofi-playground/internal/config"
	"github.com/Tomlord1122/lofi-playground/internal/database"
)

// NewTestDB opens a private in-memory SQLite database with the schema migrated.
// It is closed automatically when the test completes.
func NewTestDB(t *testing.T) database.Service {
	t.Helper()

	cfg := config.Database{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.New(cfg, nil)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return db
}
