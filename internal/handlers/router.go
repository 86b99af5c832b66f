package handlers

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NewRouter registers the panels API.
func NewRouter(h *CounterHandler, logger log.FieldLogger, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), AccessLog(logger), CORS(allowedOrigins))

	router.GET("/health", h.HealthCheck)
	router.GET("/state", h.GetState)
	router.GET("/mode", h.GetMode)
	router.PUT("/mode", h.SetMode)

	router.GET("/menu", h.ListMenu)
	router.POST("/menu/refresh", h.RefreshMenu)
	router.GET("/tables", h.ListTables)

	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.DiscardCart)
		cart.POST("/lines", h.AddLine)
		cart.DELETE("/lines/:id", h.RemoveLine)
		cart.PUT("/order-type", h.SetOrderType)
		cart.PUT("/table", h.SelectTable)
		cart.DELETE("/table", h.ClearTable)
		cart.PUT("/notes", h.SetNotes)
		cart.POST("/submit", h.SubmitOrder)
	}

	payments := router.Group("/payments")
	{
		payments.GET("/pending", h.ListPending)
		payments.GET("/selection", h.GetPayment)
		payments.POST("/selection", h.SelectOrder)
		payments.PUT("/selection", h.UpdatePayment)
		payments.DELETE("/selection", h.DeselectOrder)
		payments.POST("/submit", h.SubmitPayment)
	}

	router.GET("/receipts/:id", h.GetReceipt)

	router.GET("/notifications", h.ListNotifications)
	router.DELETE("/notifications/:id", h.DismissNotification)
	router.GET("/ws/notifications", h.StreamNotifications)

	router.POST("/session", h.Login)
	router.GET("/session", h.GetSession)
	router.DELETE("/session", h.Logout)

	return router
}
