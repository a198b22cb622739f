package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/ai"
	"github.com/fdg312/nutri-hub/internal/auth"
	"github.com/fdg312/nutri-hub/internal/blob"
	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/ingest"
	"github.com/fdg312/nutri-hub/internal/meals"
	"github.com/fdg312/nutri-hub/internal/metrics"
	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/profiles"
	"github.com/fdg312/nutri-hub/internal/recipes"
	"github.com/fdg312/nutri-hub/internal/reports"
	"github.com/fdg312/nutri-hub/internal/state"
	"github.com/fdg312/nutri-hub/internal/storage"
	"github.com/fdg312/nutri-hub/internal/storage/slots"
)

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	logger         *zap.Logger
	mux            *http.ServeMux
	metrics        *metrics.Metrics
	slot           storage.Slot
	store          *state.Store
	provider       ai.Provider
	recipes        *recipes.Service
	authMiddleware *auth.Middleware
	reportsBlob    blob.Store
	now            func() time.Time
	httpServer     *http.Server
}

// Option настраивает Server
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSlot replaces the configured state slot.
func WithSlot(slot storage.Slot) Option {
	return func(s *Server) { s.slot = slot }
}

// WithProvider replaces the configured AI provider.
func WithProvider(p ai.Provider) Option {
	return func(s *Server) { s.provider = p }
}

// WithReportsBlob replaces the store for generated report files.
func WithReportsBlob(b blob.Store) Option {
	return func(s *Server) { s.reportsBlob = b }
}

// WithClock overrides time.Now for date keys and meal timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New создаёт новый HTTP сервер: открывает слот состояния, загружает снимок
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		config:  cfg,
		logger:  zap.NewNop(),
		mux:     http.NewServeMux(),
		metrics: metrics.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := s.initProvider(ctx); err != nil {
		s.slot.Close()
		return nil, err
	}
	if err := s.initReportsBlob(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.routes()
	return s, nil
}

// initStorage открывает слот и поднимает Store из сохранённого снимка
func (s *Server) initStorage(ctx context.Context) error {
	if s.slot == nil {
		slot, mode, err := slots.Open(ctx, s.config, s.logger)
		if err != nil {
			return fmt.Errorf("open state slot: %w", err)
		}
		s.logger.Info("state slot ready", zap.String("mode", mode))
		s.slot = slot
	}

	bridge := storage.NewBridge(s.slot, s.logger, s.metrics)
	initial := bridge.Load(ctx)

	s.store = state.NewStore(initial,
		state.WithPersister(bridge),
		state.WithLogger(s.logger),
		state.WithLocation(s.config.Location),
		state.WithClock(s.now),
	)
	s.logger.Info("state loaded",
		zap.Bool("onboarded", initial.Profile.IsPresent()),
		zap.Int("days", len(initial.Logs)),
		zap.Int("streak", initial.Streak),
	)
	return nil
}

func (s *Server) initProvider(ctx context.Context) error {
	if s.provider != nil {
		return nil
	}
	p, err := ai.NewProvider(ctx, s.config)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	s.logger.Info("ai provider ready", zap.String("provider", p.Name()))
	s.provider = p
	return nil
}

// initReportsBlob uses S3 when it is fully configured and memory otherwise.
func (s *Server) initReportsBlob(ctx context.Context) error {
	if s.reportsBlob != nil {
		return nil
	}
	level, code, msg := s.config.Storage.S3.Diagnostics()
	if !s.config.Storage.S3.IsConfigured() {
		s.logger.Info("reports blob: using memory", zap.String("code", code), zap.String("s3", msg), zap.String("level", level))
		s.reportsBlob = blob.NewMemoryStore()
		return nil
	}
	store, err := blob.NewBlobStore(ctx, s.config.Storage.S3, s.logger)
	if err != nil {
		return err
	}
	s.reportsBlob = store
	return nil
}

// routes регистрирует маршруты
func (s *Server) routes() {
	// Health check and scrape endpoint (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// Auth API
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService, s.logger)

	// POST /v1/auth/dev - local dev token
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	// Goal calculator (stateless)
	targetsHandler := nutrition.NewHandler()
	s.mux.HandleFunc("POST /v1/targets/preview", targetsHandler.HandlePreviewTargets)
	s.mux.HandleFunc("GET /v1/targets/options", targetsHandler.HandleOptions)

	// Recipes
	fetcher := recipes.NewFetcher(s.provider,
		recipes.WithLogger(s.logger),
		recipes.WithMetrics(s.metrics),
		recipes.WithCount(s.config.RecipesCount),
		recipes.WithTimeout(time.Duration(s.config.RecipesTimeoutSeconds)*time.Second),
	)
	s.recipes = recipes.NewService(s.store, fetcher, s.logger)
	recipesHandler := recipes.NewHandler(s.recipes)

	// GET /v1/recipes - stored recommendations
	s.mux.HandleFunc("GET /v1/recipes", recipesHandler.HandleList)

	// POST /v1/recipes/refresh - fetch for the current profile
	s.mux.HandleFunc("POST /v1/recipes/refresh", recipesHandler.HandleRefresh)

	// Profile API
	profileService := profiles.NewService(s.store, s.recipes)
	profileHandler := profiles.NewHandler(profileService)
	s.mux.HandleFunc("GET /v1/profile", profileHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/profile", profileHandler.HandlePut)
	s.mux.HandleFunc("DELETE /v1/profile", profileHandler.HandleDelete)
	s.mux.HandleFunc("POST /v1/profile/conditions/toggle", profileHandler.HandleToggleCondition)

	// Daily log API
	pipeline := ingest.NewPipeline(s.provider,
		ingest.WithLogger(s.logger),
		ingest.WithMetrics(s.metrics),
		ingest.WithTimeout(s.config.AITimeout()),
		ingest.WithMaxMediaBytes(int64(s.config.UploadMaxBytes())),
	)
	mealsHandler := meals.NewHandler(s.store, pipeline, s.logger, s.maxBodyBytes())
	s.mux.HandleFunc("GET /v1/today", mealsHandler.HandleToday)
	s.mux.HandleFunc("GET /v1/logs", mealsHandler.HandleRange)
	s.mux.HandleFunc("GET /v1/logs/{date}", mealsHandler.HandleDay)
	s.mux.HandleFunc("POST /v1/meals", mealsHandler.HandleAdd)
	s.mux.HandleFunc("PATCH /v1/meals/{id}", mealsHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/meals/{id}", mealsHandler.HandleDelete)

	// POST /v1/meals/ingest - text/photo/voice to a meal draft
	s.mux.HandleFunc("POST /v1/meals/ingest", mealsHandler.HandleIngest)

	// History and reports
	reportsService := reports.NewService(s.store, s.reportsBlob, s.config.ReportsMaxRangeDays, s.logger)
	reportsHandler := reports.NewHandlers(reportsService)
	s.mux.HandleFunc("GET /v1/history", reportsHandler.HandleHistory)
	s.mux.HandleFunc("GET /v1/history/export", reportsHandler.HandleExport)
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)

	// State change stream
	s.mux.HandleFunc("GET /v1/stream", s.handleStream)
}

// maxBodyBytes leaves room for base64 overhead and JSON around the media.
func (s *Server) maxBodyBytes() int64 {
	return int64(s.config.UploadMaxBytes())*2 + 64<<10
}

// Handler builds the middleware chain (outermost first):
// CORS → Rate Limit → Auth → Metrics → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.metrics.Middleware(s.mux)
	if s.authMiddleware != nil && s.config.AuthMode == config.AuthModeDev {
		handler = s.authMiddleware.Wrap(handler)
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Store exposes the state store to the command layer.
func (s *Server) Store() *state.Store {
	return s.store
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": s.provider.Name(),
	})
}

// Start запускает HTTP сервер и блокируется до Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server listening",
		zap.String("addr", "http://localhost"+addr),
		zap.String("healthz", "/healthz"),
		zap.String("env", s.config.Env),
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for background recipe fetches.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.recipes.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("shutdown: recipe fetches still running")
	}
	return err
}

// Close закрывает storage и провайдер и освобождает ресурсы
func (s *Server) Close() error {
	var errs []error
	if c, ok := s.provider.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.slot != nil {
		errs = append(errs, s.slot.Close())
	}
	return errors.Join(errs...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
