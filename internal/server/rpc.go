package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/auth"
	"github.com/Tomlord1122/lofi-playground/internal/domain"
)

const maxInputBytes = 1 << 20

// procedure adapts an input-less procedure to HTTP. Protected procedures
// fail closed with UNAUTHORIZED when the request carries no session.
func procedure[Out any](s *Server, name string, protected bool, fn func(ctx context.Context, userID string) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID := auth.UserID(r.Context())
		if protected && userID == "" {
			s.fail(w, name, start, domain.ErrUnauthorized)
			return
		}

		out, err := fn(r.Context(), userID)
		if err != nil {
			s.fail(w, name, start, err)
			return
		}
		s.succeed(w, name, start, out)
	}
}

// procedureWithInput is procedure for procedures taking a JSON input body.
func procedureWithInput[In, Out any](s *Server, name string, protected bool, fn func(ctx context.Context, userID string, in In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID := auth.UserID(r.Context())
		if protected && userID == "" {
			s.fail(w, name, start, domain.ErrUnauthorized)
			return
		}

		var in In
		if rpcErr := decodeInput(w, r, &in); rpcErr != nil {
			rpcErr.Procedure = name
			s.metrics.RecordRPC(name, string(rpcErr.Code), time.Since(start))
			respondWithRPCError(w, rpcErr)
			return
		}

		out, err := fn(r.Context(), userID, in)
		if err != nil {
			s.fail(w, name, start, err)
			return
		}
		s.succeed(w, name, start, out)
	}
}

func (s *Server) succeed(w http.ResponseWriter, name string, start time.Time, out any) {
	s.metrics.RecordRPC(name, "OK", time.Since(start))
	respondWithJSON(w, http.StatusOK, map[string]any{"result": map[string]any{"data": out}})
}

func (s *Server) fail(w http.ResponseWriter, name string, start time.Time, err error) {
	rpcErr := toRPCError(err)
	rpcErr.Procedure = name
	if rpcErr.Code == api.CodeInternal {
		s.logger.Error("procedure_failed", zap.String("procedure", name), zap.Error(err))
	} else {
		s.logger.Debug("procedure_rejected", zap.String("procedure", name), zap.String("code", string(rpcErr.Code)), zap.Error(err))
	}
	s.metrics.RecordRPC(name, string(rpcErr.Code), time.Since(start))
	respondWithRPCError(w, rpcErr)
}

// toRPCError maps service errors onto the wire taxonomy. Internal details are
// never reflected to the caller.
func toRPCError(err error) *api.Error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return &api.Error{Code: api.CodeUnauthorized, Message: "You must be signed in to do this."}
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		return &api.Error{Code: api.CodeBadRequest, Message: msg}
	case errors.Is(err, domain.ErrNotFound):
		return &api.Error{Code: api.CodeNotFound, Message: "Todo not found."}
	default:
		return &api.Error{Code: api.CodeInternal, Message: "Internal server error"}
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request, dst any) *api.Error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInputBytes))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return badRequest(fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return badRequest("Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		return badRequest(fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return badRequest(fmt.Sprintf("Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		return badRequest("Request body must not be empty")
	case errors.As(err, &maxBytesError):
		return badRequest(fmt.Sprintf("Request body must not be larger than %d bytes", maxBytesError.Limit))
	default:
		return &api.Error{Code: api.CodeInternal, Message: "Error processing request"}
	}
}

func badRequest(msg string) *api.Error {
	return &api.Error{Code: api.CodeBadRequest, Message: msg}
}
