// Package api holds the wire contract shared by the RPC server and its clients:
// procedure names, input/output payloads and the error envelope.
package api

import "time"

// Procedure names, served under /rpc/<name>.
const (
	ProcTodoGetAll     = "todo.getAll"
	ProcTodoCreate     = "todo.create"
	ProcTodoUpdate     = "todo.update"
	ProcTodoDelete     = "todo.delete"
	ProcTodoDeleteMany = "todo.deleteMany"
	ProcSoundGetAll    = "sound.getAll"
)

// Todo is the wire representation of a todo item.
type Todo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTodoInput is the input of todo.create.
type CreateTodoInput struct {
	Name string `json:"name" validate:"required"`
}

// UpdateTodoInput is the input of todo.update. Nil fields are left unchanged.
type UpdateTodoInput struct {
	ID        string  `json:"id" validate:"required"`
	Name      *string `json:"name,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// DeleteTodoInput is the input of todo.delete.
type DeleteTodoInput struct {
	ID string `json:"id" validate:"required"`
}

// DeleteManyResult is the output of todo.deleteMany.
type DeleteManyResult struct {
	Count int64 `json:"count"`
}

// Sound is an entry of the ambient sound catalog.
type Sound struct {
	Title string `json:"title" yaml:"title"`
	Href  string `json:"href" yaml:"href"`
	Icon  string `json:"icon" yaml:"icon"`
}

// Response is the success envelope.
type Response[T any] struct {
	Result struct {
		Data T `json:"data"`
	} `json:"result"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error *Error `json:"error"`
}
