// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cognicore/mentions/internal/logging"
	"github.com/cognicore/mentions/internal/metrics"
	"github.com/cognicore/mentions/pkg/mentions"
)

// MaxMessages caps the batch accepted by one request.
const MaxMessages = 10000

// BatchScorer is the engine surface the HTTP layer needs.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, messages []string) (mentions.Batch, error)
}

// ScoreRequest is the body of POST /v1/score.
type ScoreRequest struct {
	Messages []string `json:"messages"`
}

// ScoreResponse pairs each message with its entity scores, in request order.
type ScoreResponse struct {
	BatchID string                    `json:"batch_id"`
	Results [][]mentions.EntityScore `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the gin engine serving scoring, health and metrics.
func NewRouter(scorer BatchScorer, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	logger = logging.OrNop(logger)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.POST("/v1/score", func(c *gin.Context) {
		var req ScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
		if len(req.Messages) > MaxMessages {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("at most %d messages per request", MaxMessages),
			})
			return
		}

		b, err := scorer.ScoreBatch(c.Request.Context(), req.Messages)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusServiceUnavailable
			}
			logger.Error("score batch", zap.String("batch_id", b.ID), zap.Error(err))
			c.JSON(status, errorResponse{Error: err.Error()})
			return
		}
		if b.Results == nil {
			b.Results = [][]mentions.EntityScore{}
		}
		c.JSON(http.StatusOK, ScoreResponse{BatchID: b.ID, Results: b.Results})
	})

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// Server wraps an http.Server around the router.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		logger: logging.OrNop(logger),
		srv: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests for up to 30 seconds.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
