package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/api"
	"github.com/Tomlord1122/lofi-playground/internal/auth"
	lofimw "github.com/Tomlord1122/lofi-playground/internal/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(lofimw.Logging(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.verifier != nil {
		r.Use(auth.Middleware(s.verifier, s.logger))
	}

	r.Get("/", s.HelloWorldHandler)
	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/rpc", func(r chi.Router) {
		if s.rateLimit != nil {
			r.Use(s.rateLimit)
		}

		r.Get("/"+api.ProcTodoGetAll, procedure(s, api.ProcTodoGetAll, true, s.todoService.GetAll))
		r.Post("/"+api.ProcTodoCreate, procedureWithInput(s, api.ProcTodoCreate, true, s.todoService.Create))
		r.Post("/"+api.ProcTodoUpdate, procedureWithInput(s, api.ProcTodoUpdate, true, s.todoService.Update))
		r.Post("/"+api.ProcTodoDelete, procedureWithInput(s, api.ProcTodoDelete, true,
			func(ctx context.Context, userID string, in api.DeleteTodoInput) (*api.Todo, error) {
				return s.todoService.Delete(ctx, userID, in.ID)
			}))
		r.Post("/"+api.ProcTodoDeleteMany, procedure(s, api.ProcTodoDeleteMany, true, s.todoService.DeleteMany))

		r.Get("/"+api.ProcSoundGetAll, procedure(s, api.ProcSoundGetAll, false,
			func(ctx context.Context, _ string) ([]api.Sound, error) {
				return s.sounds.All(), nil
			}))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respondWithRPCError(w, &api.Error{Code: api.CodeNotFound, Message: "No such procedure."})
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			respondWithJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{Error: &api.Error{
				Code:    api.CodeBadRequest,
				Message: "Queries use GET, mutations use POST.",
			}})
		})
	})

	if s.tracing {
		return otelhttp.NewHandler(r, "lofi-api")
	}
	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello World from Lofi Playground!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": "no database configured"})
		return
	}
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

func respondWithRPCError(w http.ResponseWriter, e *api.Error) {
	respondWithJSON(w, e.Code.HTTPStatus(), api.ErrorResponse{Error: e})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("marshal_response_failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error preparing response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
