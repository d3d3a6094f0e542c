package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Tomlord1122/lofi-playground/internal/api"
)

func TestClientSendsProceduresAndToken(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		gotBody = nil
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rpc/todo.getAll":
			_, _ = w.Write([]byte(`{"result":{"data":[{"id":"1","name":"read","completed":false}]}}`))
		case "/rpc/todo.deleteMany":
			_, _ = w.Write([]byte(`{"result":{"data":{"count":3}}}`))
		default:
			_, _ = w.Write([]byte(`{"result":{"data":{"id":"1","name":"renamed","completed":true}}}`))
		}
	}))
	t.Cleanup(srv.Close)

	last := func() (string, string, string, map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		return gotMethod, gotPath, gotAuth, gotBody
	}

	c := New(srv.URL+"/", WithToken("tok"))
	ctx := context.Background()

	todos, err := c.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	method, path, authz, _ := last()
	if len(todos) != 1 || todos[0].Name != "read" {
		t.Errorf("Unexpected todos %+v", todos)
	}
	if method != http.MethodGet || path != "/rpc/todo.getAll" || authz != "Bearer tok" {
		t.Errorf("Unexpected request %s %s auth=%q", method, path, authz)
	}

	name := "renamed"
	updated, err := c.Update(ctx, api.UpdateTodoInput{ID: "1", Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "renamed" {
		t.Errorf("Unexpected update result %+v", updated)
	}
	method, path, _, body := last()
	if method != http.MethodPost || path != "/rpc/todo.update" {
		t.Errorf("Unexpected request %s %s", method, path)
	}
	if body["name"] != "renamed" || body["id"] != "1" {
		t.Errorf("Unexpected body %v", body)
	}
	if _, present := body["completed"]; present {
		t.Errorf("Expected unset fields to be omitted, got %v", body)
	}

	result, err := c.DeleteMany(ctx)
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if result.Count != 3 {
		t.Errorf("Expected count 3, got %d", result.Count)
	}
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantCode api.Code
	}{
		{
			name:     "error envelope",
			status:   http.StatusNotFound,
			body:     `{"error":{"code":"NOT_FOUND","message":"Todo not found.","procedure":"todo.delete"}}`,
			wantErr:  api.ErrNotFound,
			wantCode: api.CodeNotFound,
		},
		{
			name:     "bare status",
			status:   http.StatusUnauthorized,
			body:     `unauthorized`,
			wantErr:  api.ErrUnauthorized,
			wantCode: api.CodeUnauthorized,
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"code":"TOO_MANY_REQUESTS","message":"slow down"}}`,
			wantErr:  api.ErrRateLimited,
			wantCode: api.CodeTooManyRequests,
		},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy for parallel subtests (go < 1.22)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			_, err := New(srv.URL).Delete(context.Background(), "x")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			var rpcErr *api.Error
			if !errors.As(err, &rpcErr) {
				t.Fatalf("Expected *api.Error, got %T", err)
			}
			if rpcErr.Code != tt.wantCode || rpcErr.Procedure != api.ProcTodoDelete {
				t.Errorf("Unexpected error %+v", rpcErr)
			}
		})
	}
}
