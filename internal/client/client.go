// Package client calls the lofi RPC procedures over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/api"
)

// Client is an RPC client bound to one server and one session token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAll calls todo.getAll.
func (c *Client) GetAll(ctx context.Context) ([]api.Todo, error) {
	var out []api.Todo
	if err := c.query(ctx, api.ProcTodoGetAll, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create calls todo.create.
func (c *Client) Create(ctx context.Context, in api.CreateTodoInput) (*api.Todo, error) {
	var out api.Todo
	if err := c.mutate(ctx, api.ProcTodoCreate, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update calls todo.update.
func (c *Client) Update(ctx context.Context, in api.UpdateTodoInput) (*api.Todo, error) {
	var out api.Todo
	if err := c.mutate(ctx, api.ProcTodoUpdate, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete calls todo.delete.
func (c *Client) Delete(ctx context.Context, id string) (*api.Todo, error) {
	var out api.Todo
	if err := c.mutate(ctx, api.ProcTodoDelete, api.DeleteTodoInput{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMany calls todo.deleteMany.
func (c *Client) DeleteMany(ctx context.Context) (*api.DeleteManyResult, error) {
	var out api.DeleteManyResult
	if err := c.mutate(ctx, api.ProcTodoDeleteMany, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sounds calls sound.getAll.
func (c *Client) Sounds(ctx context.Context) ([]api.Sound, error) {
	var out []api.Sound
	if err := c.query(ctx, api.ProcSoundGetAll, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) query(ctx context.Context, proc string, out any) error {
	return c.do(ctx, http.MethodGet, proc, nil, out)
}

func (c *Client) mutate(ctx context.Context, proc string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s input: %w", proc, err)
		}
		body = bytes.NewReader(payload)
	}
	return c.do(ctx, http.MethodPost, proc, body, out)
}

func (c *Client) do(ctx context.Context, method, proc string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/rpc/"+proc, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", proc, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", proc, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("rpc_call",
		zap.String("procedure", proc),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", proc, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(proc, resp.StatusCode, raw)
	}

	envelope := struct {
		Result struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", proc, err)
	}
	if out == nil || len(envelope.Result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result.Data, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", proc, err)
	}
	return nil
}

func decodeError(proc string, status int, raw []byte) error {
	var env api.ErrorResponse
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Code != "" {
		if env.Error.Procedure == "" {
			env.Error.Procedure = proc
		}
		return env.Error
	}
	return &api.Error{
		Code:      api.CodeFromStatus(status),
		Message:   http.StatusText(status),
		Procedure: proc,
	}
}
