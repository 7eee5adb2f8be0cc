package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
)

const (
	// defaultAddr is the listen address when none is configured.
	defaultAddr = ":8080"

	// defaultListLimit is the row count for list endpoints without an
	// explicit limit parameter.
	defaultListLimit = 20

	// maxListLimit caps the limit parameter so a single request cannot
	// drag the whole history through the encoder.
	maxListLimit = 200

	// defaultShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight requests.
	defaultShutdownTimeout = 10 * time.Second
)

// Server serves the lookup database over HTTP.
type Server struct {
	// db is the store every endpoint reads from.
	db *database.LookupDB

	// addr is the listen address.
	addr string

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests
// after the context is cancelled.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server backed by the given database.
func New(db *database.LookupDB, opts ...Option) *Server {
	s := &Server{
		db:              db,
		addr:            defaultAddr,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// gin's mode is process-global, so it is set exactly once.
var releaseMode sync.Once

// Handler builds the HTTP handler serving the API. It is exposed
// separately from Run so the API can be mounted in tests or embedded in
// another server.
func (s *Server) Handler() http.Handler {
	releaseMode.Do(func() { gin.SetMode(gin.ReleaseMode) })
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.logRequests())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.GET("/searches", s.handleRecentSearches)
		api.GET("/searches/:username", s.handleSearchesFor)
		api.GET("/phones", s.handleRecentPhones)
		api.GET("/sessions", s.handleRecentSessions)
		api.GET("/breaches/:account", s.handleBreachesFor)
		api.GET("/darkweb/:term", s.handleDarkwebFor)
	}

	return router
}

// Run serves the API until the context is cancelled, then shuts the
// listener down gracefully. It returns the first listener or shutdown
// error.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("api server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	// Shutdown watcher. The derived context also cancels when the
	// listener goroutine fails, so a failed bind does not leave this
	// goroutine waiting forever.
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// logRequests logs every request through slog at debug level.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "intelscan",
		"time":    time.Now().UTC(),
	})
}

func (s *Server) handleRecentSearches(c *gin.Context) {
	searches, err := s.db.RecentUsernameSearches(c.Request.Context(), limitParam(c))
	if err != nil {
		s.fail(c, "failed to list username searches", err)
		return
	}
	if searches == nil {
		searches = []model.UsernameSearch{}
	}
	c.JSON(http.StatusOK, searches)
}

func (s *Server) handleSearchesFor(c *gin.Context) {
	username := c.Param("username")
	searches, err := s.db.UsernameSearchesFor(c.Request.Context(), username)
	if err != nil {
		s.fail(c, "failed to list username searches", err)
		return
	}
	if len(searches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no searches recorded for username"})
		return
	}
	c.JSON(http.StatusOK, searches)
}

func (s *Server) handleRecentPhones(c *gin.Context) {
	lookups, err := s.db.RecentPhoneLookups(c.Request.Context(), limitParam(c))
	if err != nil {
		s.fail(c, "failed to list phone lookups", err)
		return
	}
	if lookups == nil {
		lookups = []model.PhoneLookup{}
	}
	c.JSON(http.StatusOK, lookups)
}

func (s *Server) handleRecentSessions(c *gin.Context) {
	sessions, err := s.db.RecentSessions(c.Request.Context(), limitParam(c))
	if err != nil {
		s.fail(c, "failed to list sessions", err)
		return
	}
	if sessions == nil {
		sessions = []model.SearchSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleBreachesFor(c *gin.Context) {
	account := c.Param("account")
	hits, err := s.db.BreachHitsFor(c.Request.Context(), account)
	if err != nil {
		s.fail(c, "failed to list breach hits", err)
		return
	}
	if len(hits) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no breach hits recorded for account"})
		return
	}
	c.JSON(http.StatusOK, hits)
}

func (s *Server) handleDarkwebFor(c *gin.Context) {
	term := c.Param("term")
	mentions, err := s.db.DarkwebMentionsFor(c.Request.Context(), term)
	if err != nil {
		s.fail(c, "failed to list darkweb mentions", err)
		return
	}
	if len(mentions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no mentions recorded for term"})
		return
	}
	c.JSON(http.StatusOK, mentions)
}

// fail logs the underlying error and answers with a generic message so
// database details never leak to clients.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// limitParam reads the limit query parameter, clamped to a sane range.
// Garbage falls back to the default rather than erroring.
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit < 1 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
