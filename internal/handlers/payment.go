package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

func (h *CounterHandler) ListPending(c *gin.Context) {
	orders, err := h.pool.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *CounterHandler) GetPayment(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Payments().View())
}

func (h *CounterHandler) SelectOrder(c *gin.Context) {
	var req struct {
		OrderID int `json:"order_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.workflow.Payments().Select(c.Request.Context(), req.OrderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Payments().View())
}

// UpdatePayment applies whichever of method, amount and reference_number
// are present.
func (h *CounterHandler) UpdatePayment(c *gin.Context) {
	var req struct {
		Method    *models.PaymentMethod `json:"method"`
		Amount    *string               `json:"amount"`
		Reference *string               `json:"reference_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := h.workflow.Payments()
	if req.Method != nil {
		if err := p.SetMethod(*req.Method); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Amount != nil {
		if err := p.SetAmount(*req.Amount); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Reference != nil {
		if err := p.SetReference(*req.Reference); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, p.View())
}

func (h *CounterHandler) DeselectOrder(c *gin.Context) {
	if err := h.workflow.Payments().Deselect(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Payments().View())
}

func (h *CounterHandler) SubmitPayment(c *gin.Context) {
	result, err := h.workflow.Payments().Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetReceipt composes a fresh receipt from the canonical order.
func (h *CounterHandler) GetReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.receipts.Reprint(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "text" {
		text, err := r.Text()
		if err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, text)
		return
	}
	c.JSON(http.StatusOK, r)
}
