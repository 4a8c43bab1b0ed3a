// Package api exposes the matching engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/engine"
	"github.com/spigell/skill-matcher/internal/matching"
)

const shutdownTimeout = 10 * time.Second

// ScoreSaver persists computed scores, e.g. *postgres.Store.
type ScoreSaver interface {
	SaveScores(ctx context.Context, scores []matching.MatchingScore) error
}

// Server serves HTTP requests.
type Server struct {
	engine *engine.Engine
	saver  ScoreSaver
	logger *zap.Logger
	router *gin.Engine
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScoreSaver persists every score the server computes.
func WithScoreSaver(saver ScoreSaver) Option {
	return func(s *Server) {
		s.saver = saver
	}
}

func NewServer(eng *engine.Engine, opts ...Option) *Server {
	server := &Server{
		engine: eng,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(server.logger))

	router.GET("/healthz", server.health)

	v1 := router.Group("/v1")
	v1.POST("/match", server.match)
	v1.POST("/rank", server.rank)
	v1.DELETE("/cache", server.clearCache)

	server.router = router
	return server
}

// Handler returns the router, mostly for tests.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Run listens on address until ctx is cancelled, then shuts down gracefully.
func (server *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           server.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		server.logger.Info("http server listening", zap.String("address", address))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	server.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		logger.Debug("http request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var loadErr *matching.DataLoadError

	switch {
	case errors.Is(err, matching.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, matching.ErrInvalidJobOffer), errors.Is(err, matching.ErrInvalidProfileID):
		return http.StatusBadRequest
	case errors.As(err, &loadErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
