package api

import (
	"net/http"

	authdelivery "github.com/DSaraf-Work/budget-manager-backend/internal/auth/delivery"
	authusecase "github.com/DSaraf-Work/budget-manager-backend/internal/auth/usecase"
	conndelivery "github.com/DSaraf-Work/budget-manager-backend/internal/connection/delivery"
	syncdelivery "github.com/DSaraf-Work/budget-manager-backend/internal/sync/delivery"
	txndelivery "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/delivery"
	tsdelivery "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUsecase authusecase.AuthUsecase,
	authHandler *authdelivery.AuthHandler,
	connHandler *conndelivery.ConnectionHandler,
	syncHandler *syncdelivery.SyncHandler,
	txnHandler *txndelivery.TransactionHandler,
	senderHandler *tsdelivery.TrustedSenderHandler,
) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authdelivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Connection routes (protected)
		connections := api.Group("/connections")
		connections.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			connections.GET("", connHandler.ListConnections)
			connections.GET("/auth-url", connHandler.GetAuthURL)
			connections.POST("/callback", connHandler.Callback)
		}
		api.POST("/disconnect", authdelivery.AuthMiddleware(authUsecase), connHandler.Disconnect)

		// Sync routes (protected)
		sync := api.Group("/")
		sync.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			sync.POST("/sync", syncHandler.TriggerSync)
			sync.GET("/scheduler", syncHandler.SchedulerStatus)
			sync.POST("/scheduler", syncHandler.ControlScheduler)
			sync.GET("/sync-runs", syncHandler.ListSyncRuns)
			sync.GET("/messages", syncHandler.ListMessages)
		}

		// Transaction review routes (protected)
		transactions := api.Group("/transactions")
		transactions.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			transactions.GET("", txnHandler.ListTransactions)
			transactions.POST("", txnHandler.CreateTransaction)
			transactions.PUT("/:id", txnHandler.Edit)
			transactions.POST("/:id/approve", txnHandler.Approve)
			transactions.POST("/:id/reject", txnHandler.Reject)
		}

		// Trusted sender routes (protected)
		senders := api.Group("/trusted-senders")
		senders.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			senders.GET("", senderHandler.ListSenders)
			senders.POST("", senderHandler.CreateSender)
			senders.PUT("/:id", senderHandler.UpdateSender)
			senders.DELETE("/:id", senderHandler.DeleteSender)
		}
	}
}
