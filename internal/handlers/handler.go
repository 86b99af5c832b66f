// Package handlers exposes the counter's order and payment panels as a JSON
// API for the hosting shell.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/counter"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/lifecycle"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/notify"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/payment"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/receipt"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/session"
)

type MenuReader interface {
	Items(ctx context.Context) ([]models.MenuItem, error)
	Tables(ctx context.Context) ([]models.TableRef, error)
	Invalidate(ctx context.Context) error
}

type PoolReader interface {
	List(ctx context.Context) ([]models.SubmittedOrder, error)
}

type Reprinter interface {
	Reprint(ctx context.Context, orderID int) (*receipt.Receipt, error)
}

type CounterHandler struct {
	workflow      *counter.Workflow
	menu          MenuReader
	pool          PoolReader
	receipts      Reprinter
	notifications *notify.Center
	sessions      *session.Manager
	serviceName   string
}

func NewCounterHandler(
	workflow *counter.Workflow,
	menu MenuReader,
	pool PoolReader,
	receipts Reprinter,
	notifications *notify.Center,
	sessions *session.Manager,
	serviceName string,
) *CounterHandler {
	return &CounterHandler{
		workflow:      workflow,
		menu:          menu,
		pool:          pool,
		receipts:      receipts,
		notifications: notifications,
		sessions:      sessions,
		serviceName:   serviceName,
	}
}

// HealthCheck returns server status
func (h *CounterHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.serviceName})
}

// GetState returns both panels and the active mode.
func (h *CounterHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.View())
}

func (h *CounterHandler) GetMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": h.workflow.Mode()})
}

func (h *CounterHandler) SetMode(c *gin.Context) {
	var req struct {
		Mode counter.Mode `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.workflow.SetMode(req.Mode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": h.workflow.Mode()})
}

func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	switch {
	case errors.Is(err, lifecycle.ErrSubmitInFlight),
		errors.Is(err, payment.ErrSubmitInFlight),
		errors.Is(err, payment.ErrNoSelection):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrSessionExpired):
		status = http.StatusUnauthorized
	}

	body := gin.H{"error": err.Error()}
	if v, ok := apperr.AsValidation(err); ok {
		body["error"] = v.Message
		if v.Field != "" {
			body["field"] = v.Field
		}
	}
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
