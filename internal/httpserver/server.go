// internal/httpserver/server.go
//
// HTTP server wiring for the Hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging and tracing).
//   - Public endpoints: "/", "/health", "GET /words".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Word bank management (require auth): POST /words, DELETE /words/{word}.
//   - Chat websocket (when configured): GET /chat/ws.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Live games sit in the store; the database keeps their history rows.
//   - Database writes on the guess path are best effort: failures are
//     logged and the player still gets their result.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/daily"
	"github.com/robalobadob/hangman/internal/database"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/telemetry"
	"github.com/robalobadob/hangman/internal/words"
)

// Server bundles the router, the live game store, the word bank and the
// database repositories.
type Server struct {
	r     *chi.Mux
	cfg   config.Config
	store store.Store
	db    *sql.DB
	users *database.Users
	games *database.Games
	daily *daily.Store
	bank  *words.Bank

	rngMu sync.Mutex
	rng   *rand.Rand

	now    func() time.Time
	tracer trace.Tracer
	chat   http.Handler

	dailies *dailyServer
}

// Option customises a Server.
type Option func(*Server)

// WithClock replaces time.Now (daily dates, game timestamps).
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// WithRand sets the generator used to draw computer words.
func WithRand(rng *rand.Rand) Option { return func(s *Server) { s.rng = rng } }

// WithTracer replaces the default "http" tracer.
func WithTracer(t trace.Tracer) Option { return func(s *Server) { s.tracer = t } }

// WithChat mounts h at GET /chat/ws.
func WithChat(h http.Handler) Option { return func(s *Server) { s.chat = h } }

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB, bank *words.Bank, opts ...Option) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		cfg:   cfg,
		store: st,
		db:    db,
		users: database.NewUsers(db),
		games: database.NewGames(db),
		daily: daily.NewStore(db),
		bank:  bank,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = words.NewRand(rand.Uint64(), rand.Uint64())
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer("http")
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.observe)       // access log + span
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))

	// Websockets outlive the request timeout, so chat sits outside that group.
	if s.chat != nil {
		s.r.Get("/chat/ws", s.chat.ServeHTTP)
	}

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"hangman","endpoints":["/health","POST /game/new","POST /game/guess","GET /game/{id}","/words","/daily/*","/auth/*","/chat/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.With(s.withOptionalAuth()).Post("/game/new", s.handleNewGame)
		r.With(s.withOptionalAuth()).Post("/game/guess", s.handleGuess)
		r.With(s.withOptionalAuth()).Get("/game/{id}", s.handleGetGame)

		// Daily Challenge: OPTIONAL AUTH (guests can play)
		s.mountDaily(r.With(s.withOptionalAuth()))

		s.mountWords(r)
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr and shuts down gracefully when ctx ends.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.sweepEvery(ctx, sweepInterval)

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

const sweepInterval = time.Minute

// sweepEvery prunes finished games until ctx is done.
func (s *Server) sweepEvery(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

// sweep drops games that have been over for longer than GAME_RETENTION.
// Their results are already in the database.
func (s *Server) sweep(ctx context.Context) {
	n, err := s.store.Prune(ctx, s.now().Add(-s.cfg.GameRetention))
	if err != nil {
		log.Warn().Err(err).Msg("prune games")
		return
	}
	if n > 0 {
		log.Debug().Int("games", n).Msg("pruned finished games")
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// observe wraps each request in a span and writes one access log line.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", ww.Status()),
		)
		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
