package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *CounterHandler) Login(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := h.sessions.Login(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CounterHandler) GetSession(c *gin.Context) {
	s, err := h.sessions.Current()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CounterHandler) Logout(c *gin.Context) {
	h.sessions.Logout()
	c.Status(http.StatusNoContent)
}
