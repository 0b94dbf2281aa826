package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/morozRed/lineage/internal/events"
	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/search"
)

// maxBodyBytes bounds request bodies, imports included.
const maxBodyBytes = 10 << 20

// FamilyService is the part of the family service the API serves.
type FamilyService interface {
	View() graph.TreeView
	Tree() *graph.Tree
	Levels() graph.Levels
	Generations() []graph.GenerationLevel
	ListAllMembers() []family.Person
	MemberByID(id string) (family.Person, bool)
	PotentialParents() []family.Person
	Add(p family.Person) error
	Update(id string, patch family.Patch) bool
	Delete(id string) bool
	Search(query string, limit int, fuzzy bool) []search.Result
	Path(fromID, toID string) []graph.PathStep
	Upcoming(days int) []events.Occurrence
	Import(data []byte) error
	Export() ([]byte, error)
	Reset() error
	Info() family.Info
}

type Options struct {
	CORSOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Version string
}

// NewRouter mounts the API under /api/v1.
func NewRouter(svc FamilyService, opts Options, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{svc: svc, logger: logger, version: opts.Version}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(logger))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/info", h.info)
		r.Get("/tree", h.tree)
		r.Get("/generations", h.generations)
		r.Get("/parents", h.parents)
		r.Get("/search", h.search)
		r.Get("/path", h.path)
		r.Get("/events/upcoming", h.upcoming)
		r.Get("/export", h.export)
		r.Post("/import", h.importSnapshot)
		r.Post("/reset", h.reset)

		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.listMembers)
			r.Post("/", h.createMember)
			r.Get("/{memberID}", h.getMember)
			r.Put("/{memberID}", h.updateMember)
			r.Delete("/{memberID}", h.deleteMember)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return router
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Serve runs handler on cfg.Addr until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, receives the bound address once listening.
func Serve(ctx context.Context, cfg ServerConfig, handler http.Handler, logger *zap.Logger, ready func(addr string)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	logger.Info("http server listening", zap.String("addr", listener.Addr().String()))
	if ready != nil {
		ready(listener.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
