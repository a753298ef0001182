package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/pipeline"
	"github.com/matzehuels/nestboard/pkg/session"
	"github.com/matzehuels/nestboard/pkg/store"
)

// DefaultFrame is the view event coalescing interval.
const DefaultFrame = 16 * time.Millisecond

// Server serves one session. Use New to create one.
type Server struct {
	mu   sync.Mutex
	sess *session.Session

	store  store.Store
	name   string
	frame  time.Duration
	logger *log.Logger
	runner *pipeline.Runner

	hub    *hub
	router chi.Router
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore enables POST /api/save, writing the board under name.
func WithStore(st store.Store, name string) Option {
	return func(s *Server) { s.store, s.name = st, name }
}

// WithFrame sets the view event coalescing interval.
func WithFrame(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.frame = d
		}
	}
}

// WithRenderer sets the runner behind the render routes. The default
// renders without a cache.
func WithRenderer(r *pipeline.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// New wraps sess and starts the event hub. Call Close to stop it.
// The server subscribes to sess; callers must not use sess directly
// afterwards except through Do.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:   sess,
		frame:  DefaultFrame,
		logger: sess.Logger(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.hub = newHub(s.frame, s.logger)
	sess.Subscribe(s.hub.publish)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.done)
		s.hub.run(ctx)
	}()

	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Do runs fn with exclusive access to the session.
func (s *Server) Do(fn func(*session.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.sess)
}

// Save writes the board to the configured store.
func (s *Server) Save(ctx context.Context) error {
	if s.store == nil {
		return errs.New(errs.ErrCodeUnsupported, "no store configured")
	}
	s.mu.Lock()
	s.sess.Flush()
	snap := pkgio.FromTree(s.sess.Tree(), s.sess.ActiveID())
	s.mu.Unlock()
	snap.Name = s.name
	return s.store.Save(ctx, s.name, snap)
}

// Close stops the event hub and disconnects event clients.
func (s *Server) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleGetView)
		r.Post("/view/pan", s.handlePan)
		r.Post("/view/zoom", s.handleZoom)
		r.Post("/view/reset", s.handleResetView)
		r.Post("/view/fit", s.handleFit)
		r.Put("/screen", s.handleScreen)

		r.Get("/layer", s.handleGetLayer)
		r.Get("/layer.svg", s.handleLayerSVG)
		r.Get("/tree.svg", s.handleTreeSVG)
		r.Get("/render", s.handleRender)

		r.Post("/nodes", s.handleCreateNode)
		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetNode)
			r.Patch("/", s.handlePatchNode)
			r.Delete("/", s.handleDeleteNode)
			r.Post("/enter", s.handleEnter)
		})

		r.Post("/navigate/{id}", s.handleNavigate)
		r.Post("/open/{id}", s.handleOpen)
		r.Post("/up", s.handleUp)
		r.Get("/breadcrumbs", s.handleBreadcrumbs)

		r.Post("/connections", s.handleConnect)
		r.Delete("/connections", s.handleDisconnect)

		r.Post("/save", s.handleSave)
		r.Get("/events", s.handleEvents)
	})
	return r
}
