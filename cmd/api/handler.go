package api

import (
	authdelivery "github.com/DSaraf-Work/budget-manager-backend/internal/auth/delivery"
	authusecase "github.com/DSaraf-Work/budget-manager-backend/internal/auth/usecase"
	conndelivery "github.com/DSaraf-Work/budget-manager-backend/internal/connection/delivery"
	connusecase "github.com/DSaraf-Work/budget-manager-backend/internal/connection/usecase"
	msgusecase "github.com/DSaraf-Work/budget-manager-backend/internal/message/usecase"
	syncdelivery "github.com/DSaraf-Work/budget-manager-backend/internal/sync/delivery"
	syncusecase "github.com/DSaraf-Work/budget-manager-backend/internal/sync/usecase"
	txndelivery "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/delivery"
	txnusecase "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/usecase"
	tsdelivery "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/delivery"
	tsusecase "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase   authusecase.AuthUsecase
	authHandler   *authdelivery.AuthHandler
	connHandler   *conndelivery.ConnectionHandler
	syncHandler   *syncdelivery.SyncHandler
	txnHandler    *txndelivery.TransactionHandler
	senderHandler *tsdelivery.TrustedSenderHandler
}

func NewHandler(
	authUsecase authusecase.AuthUsecase,
	connUsecase connusecase.ConnectionUsecase,
	syncUsecase syncusecase.SyncUsecase,
	scheduler *syncusecase.Scheduler,
	fetcher msgusecase.FetcherUsecase,
	txnUsecase txnusecase.TransactionUsecase,
	senderUsecase tsusecase.TrustedSenderUsecase,
) *Handler {
	return &Handler{
		authUsecase:   authUsecase,
		authHandler:   authdelivery.NewAuthHandler(authUsecase),
		connHandler:   conndelivery.NewConnectionHandler(connUsecase),
		syncHandler:   syncdelivery.NewSyncHandler(syncUsecase, scheduler, fetcher),
		txnHandler:    txndelivery.NewTransactionHandler(txnUsecase),
		senderHandler: tsdelivery.NewTrustedSenderHandler(senderUsecase),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.connHandler, h.syncHandler, h.txnHandler, h.senderHandler)

	return r.Run(addr)
}
