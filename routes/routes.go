package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Pablojox/analyze-transactions/handlers"
)

// SetupSandboxRoutes registers the emulated upstream endpoints: the
// Cognito wire operation at the root and the Salt Edge partners v1
// resources under their real paths.
func SetupSandboxRoutes(router *gin.Engine, h *handlers.SandboxHandler) {
	router.POST("/", h.ListUsers)

	v1 := router.Group("/api/partners/v1")
	v1.GET("/connections", h.GetConnections)
	v1.GET("/accounts", h.GetAccounts)
	v1.GET("/transactions", h.GetTransactions)
}
