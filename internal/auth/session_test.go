package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testSecret = "test-secret"

func TestVerify(t *testing.T) {
	t.Parallel()

	valid, err := Mint(testSecret, "lofi", User{ID: "user-1", Name: "Ada"}, time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	expired, _ := Mint(testSecret, "lofi", User{ID: "user-1"}, -time.Hour)
	wrongSecret, _ := Mint("other-secret", "lofi", User{ID: "user-1"}, time.Hour)
	wrongIssuer, _ := Mint(testSecret, "someone-else", User{ID: "user-1"}, time.Hour)
	noSubject, _ := Mint(testSecret, "lofi", User{}, time.Hour)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid token", token: valid},
		{name: "empty token", token: "", wantErr: true},
		{name: "garbage", token: "invalid.token.here", wantErr: true},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong secret", token: wrongSecret, wantErr: true},
		{name: "wrong issuer", token: wrongIssuer, wantErr: true},
		{name: "no subject", token: noSubject, wantErr: true},
	}

	v := NewVerifier(testSecret, "lofi")
	for _, tt := range tests {
		tt := tt // per-iteration copy for parallel subtests (go < 1.22)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session, err := v.Verify(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if session.User.ID != "user-1" || session.User.Name != "Ada" {
				t.Errorf("Unexpected session user %+v", session.User)
			}
			if !session.ExpiresAt.After(time.Now()) {
				t.Error("Expected expiry in the future")
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	token, _ := Mint(testSecret, "", User{ID: "user-42"}, time.Hour)
	v := NewVerifier(testSecret, "")

	tests := []struct {
		name   string
		header string
		wantID string
	}{
		{name: "bearer token", header: "Bearer " + token, wantID: "user-42"},
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic " + token},
		{name: "bad token", header: "Bearer nope"},
		{name: "lowercase scheme", header: "bearer " + token, wantID: "user-42"},
		{name: "extra spaces", header: "Bearer   " + token, wantID: "user-42"},
		{name: "scheme only", header: "Bearer"},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy for parallel subtests (go < 1.22)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotID string
			handler := Middleware(v, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID = UserID(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/rpc/todo.getAll", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("Expected request to pass through, got status %d", rec.Code)
			}
			if gotID != tt.wantID {
				t.Errorf("UserID = %q, want %q", gotID, tt.wantID)
			}
		})
	}
}

func TestSessionFromContext(t *testing.T) {
	t.Parallel()

	if SessionFromContext(context.Background()) != nil {
		t.Error("Expected nil session on empty context")
	}
	ctx := context.WithValue(context.Background(), sessionContextKey, "not a session")
	if SessionFromContext(ctx) != nil {
		t.Error("Expected nil session when wrong type in context")
	}
	ctx = WithSession(context.Background(), &Session{User: User{ID: "u"}})
	if UserID(ctx) != "u" {
		t.Errorf("UserID = %q, want %q", UserID(ctx), "u")
	}
}
