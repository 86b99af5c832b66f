package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

func (h *CounterHandler) ListMenu(c *gin.Context) {
	items, err := h.menu.Items(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RefreshMenu drops the cached menu and tables and returns the menu as the
// Menu Service now reports it.
func (h *CounterHandler) RefreshMenu(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.menu.Invalidate(ctx); err != nil {
		respondError(c, err)
		return
	}
	items, err := h.menu.Items(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CounterHandler) ListTables(c *gin.Context) {
	tables, err := h.menu.Tables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *CounterHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) AddLine(c *gin.Context) {
	var req struct {
		MenuItemID int `json:"menu_item_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.workflow.AddItem(c.Request.Context(), req.MenuItemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) RemoveLine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.workflow.Orders().RemoveItem(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) SetOrderType(c *gin.Context) {
	var req struct {
		OrderType models.OrderType `json:"order_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.workflow.Orders().SetOrderType(req.OrderType); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) SelectTable(c *gin.Context) {
	var req struct {
		TableID int `json:"table_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.workflow.SelectTable(c.Request.Context(), req.TableID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) ClearTable(c *gin.Context) {
	if err := h.workflow.Orders().ClearTable(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) SetNotes(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.workflow.Orders().SetNotes(req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

func (h *CounterHandler) DiscardCart(c *gin.Context) {
	if err := h.workflow.Orders().Discard(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Orders().View())
}

// SubmitOrder answers 201 with the server's order. On failure the body
// carries the error and the untouched cart stays available from GET /cart.
func (h *CounterHandler) SubmitOrder(c *gin.Context) {
	order, err := h.workflow.Orders().Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
