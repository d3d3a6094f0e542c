package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/ambient"
	"github.com/Tomlord1122/lofi-playground/internal/auth"
	"github.com/Tomlord1122/lofi-playground/internal/database"
	"github.com/Tomlord1122/lofi-playground/internal/metrics"
	"github.com/Tomlord1122/lofi-playground/internal/service"
)

// Options carries the server's dependencies.
type Options struct {
	Port        int
	TodoService service.TodoService
	DB          database.Service
	Sounds      *ambient.Catalog
	Verifier    *auth.Verifier
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	RateLimit   func(http.Handler) http.Handler // wraps /rpc when set
	CORSOrigins []string
	Tracing     bool
}

type Server struct {
	port        int
	todoService service.TodoService
	db          database.Service
	sounds      *ambient.Catalog
	verifier    *auth.Verifier
	metrics     *metrics.Metrics
	logger      *zap.Logger
	rateLimit   func(http.Handler) http.Handler
	corsOrigins []string
	tracing     bool
}

// New builds a Server. Missing optional dependencies get harmless defaults.
func New(opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"https://*", "http://*"}
	}

	return &Server{
		port:        opts.Port,
		todoService: opts.TodoService,
		db:          opts.DB,
		sounds:      opts.Sounds,
		verifier:    opts.Verifier,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		rateLimit:   opts.RateLimit,
		corsOrigins: opts.CORSOrigins,
		tracing:     opts.Tracing,
	}
}

// NewServer returns a ready-to-run *http.Server.
func NewServer(opts Options) *http.Server {
	appServer := New(opts)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
