package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-orders/internal/models"
	"storefront-orders/internal/service"
	"storefront-orders/internal/store"
	"storefront-orders/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
	statsService *service.StatsService
	store        store.OrderStore
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService, statsService *service.StatsService, st store.OrderStore) *Handler {
	return &Handler{
		orderService: orderService,
		statsService: statsService,
		store:        st,
	}
}

// SetupRoutes sets up HTTP routes. CORS is open: the storefront and
// admin frontends are served from separate origins.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/orders", h.recordCapture)
		api.GET("/orders", h.listOrders)
		api.GET("/orders/:id", h.getOrder)
		api.GET("/orders/paypal/:ref", h.getOrderByPaymentRef)
		api.PUT("/orders/:id/status", h.updateStatus)
		api.GET("/stats", h.getStats)
	}
}

// healthCheck reports whether the ledger is reachable
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// recordCapture handles a capture submission. A duplicate payment ref
// responds 200 with the already-recorded order; a store failure
// responds 503 so the client retries the same submission instead of
// telling the buyer to pay again.
func (h *Handler) recordCapture(c *gin.Context) {
	var sub service.CaptureSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"details": "invalid request body: " + err.Error(),
		})
		return
	}

	order, replayed, err := h.orderService.RecordCapture(c.Request.Context(), &sub)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"order":    order,
		"replayed": replayed,
	})
}

// listOrders returns all orders in creation order
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"details": "invalid order ID",
		})
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// getOrderByPaymentRef handles lookup by external payment ref
func (h *Handler) getOrderByPaymentRef(c *gin.Context) {
	order, err := h.orderService.GetOrderByPaymentRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateStatus handles a payment status transition request
func (h *Handler) updateStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"details": "invalid order ID",
		})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"details": "invalid request body: " + err.Error(),
		})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// getStats returns the aggregate snapshot
func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.statsService.ComputeStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// writeError maps domain errors onto status codes and error kinds so
// callers can distinguish "payment failed" from "payment captured but
// recording failed".
func writeError(c *gin.Context, err error) {
	var (
		validationErr  *models.ValidationError
		notFoundErr    *models.NotFoundError
		transitionErr  *models.InvalidTransitionError
		unavailableErr *models.StoreUnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"details": err.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"details": err.Error(),
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_transition",
			"details": err.Error(),
		})
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "store_unavailable",
			"details":   err.Error(),
			"retryable": true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
