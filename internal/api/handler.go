// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"net/http"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateController is the part of the lifecycle controller the API drives.
type StateController interface {
	State() models.AppState
	ClearBadge(ctx context.Context) (models.AppState, error)
	RetryToken(ctx context.Context) (models.AppState, error)
}

type CallSimulator interface {
	SimulateCall(ctx context.Context, title, body, screen string) (models.AppState, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SimulateCallRequest mirrors the three free-text fields of the demo UI.
type SimulateCallRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Screen string `json:"screen"`
}

type Handler struct {
	controller StateController
	simulator  CallSimulator
	health     HealthChecker
	logger     logger.Logger
}

// NewHandler wires the API. health may be nil.
func NewHandler(controller StateController, simulator CallSimulator, health HealthChecker, log logger.Logger) *Handler {
	return &Handler{
		controller: controller,
		simulator:  simulator,
		health:     health,
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// NewRouter registers every route on a fresh engine.
func NewRouter(h *Handler, metricsEnabled bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", h.HealthCheck)
	router.GET("/state", h.GetState)
	router.POST("/simulate-call", h.SimulateCall)
	router.POST("/badge/clear", h.ClearBadge)
	router.POST("/token/retry", h.RetryToken)
	if metricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return router
}

func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.State())
}

func (h *Handler) SimulateCall(c *gin.Context) {
	var req SimulateCallRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
	}

	state, err := h.simulator.SimulateCall(c.Request.Context(), req.Title, req.Body, req.Screen)
	if err != nil {
		h.respondError(c, "simulate-call", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) ClearBadge(c *gin.Context) {
	state, err := h.controller.ClearBadge(c.Request.Context())
	if err != nil {
		h.respondError(c, "clear-badge", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) RetryToken(c *gin.Context) {
	state, err := h.controller.RetryToken(c.Request.Context())
	if err != nil {
		h.respondError(c, "retry-token", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) respondError(c *gin.Context, operation string, err error) {
	status := statusFor(err)
	h.logger.Warn("request failed", map[string]interface{}{
		"operation": operation,
		"status":    status,
		"error":     err,
	})

	if stdErr, ok := apperrors.AsStandardError(err); ok {
		c.JSON(status, gin.H{"error": stdErr})
		return
	}
	c.JSON(status, gin.H{"error": gin.H{"message": err.Error()}})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnsupportedPlatform):
		return http.StatusNotImplemented
	case errors.Is(err, apperrors.ErrTokenFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrControllerStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
