package main

import (
	"log"
	"time"

	api "github.com/DSaraf-Work/budget-manager-backend/cmd/api"
	authdomain "github.com/DSaraf-Work/budget-manager-backend/internal/auth/domain"
	authRepo "github.com/DSaraf-Work/budget-manager-backend/internal/auth/repository"
	authUsecase "github.com/DSaraf-Work/budget-manager-backend/internal/auth/usecase"
	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"
	connRepo "github.com/DSaraf-Work/budget-manager-backend/internal/connection/repository"
	connUsecase "github.com/DSaraf-Work/budget-manager-backend/internal/connection/usecase"
	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"
	msgRepo "github.com/DSaraf-Work/budget-manager-backend/internal/message/repository"
	msgUsecase "github.com/DSaraf-Work/budget-manager-backend/internal/message/usecase"
	syncdomain "github.com/DSaraf-Work/budget-manager-backend/internal/sync/domain"
	syncRepo "github.com/DSaraf-Work/budget-manager-backend/internal/sync/repository"
	syncUsecase "github.com/DSaraf-Work/budget-manager-backend/internal/sync/usecase"
	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"
	txnRepo "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/repository"
	txnUsecase "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/usecase"
	tsdomain "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/domain"
	tsRepo "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/repository"
	tsUsecase "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/usecase"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/config"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/database"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&conndomain.Connection{},
		&tsdomain.TrustedSender{},
		&msgdomain.RawMessage{},
		&txndomain.Transaction{},
		&syncdomain.SyncRun{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	connectionRepository := connRepo.NewConnectionRepository(db)
	senderRepository := tsRepo.NewTrustedSenderRepository(db)
	messageRepository := msgRepo.NewRawMessageRepository(db)
	transactionRepository := txnRepo.NewTransactionRepository(db)
	syncRunRepository := syncRepo.NewSyncRunRepository(db)

	// Initialize Gmail service
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	connUsecaseInstance := connUsecase.NewConnectionUsecase(connectionRepository, gmailService)
	senderUsecaseInstance := tsUsecase.NewTrustedSenderUsecase(senderRepository)
	fetcherInstance := msgUsecase.NewFetcherUsecase(messageRepository, gmailService, senderUsecaseInstance, connUsecaseInstance)
	txnUsecaseInstance := txnUsecase.NewTransactionUsecase(transactionRepository, messageRepository)

	// Scheduled runs look back 1.5x the interval so drift or downtime
	// between ticks cannot silently drop messages
	schedulerInterval := time.Duration(cfg.SyncIntervalMin) * time.Minute
	defaultHoursBack := int((schedulerInterval * 3 / 2).Hours())
	if defaultHoursBack < 1 {
		defaultHoursBack = 1
	}

	syncUsecaseInstance := syncUsecase.NewSyncUsecase(
		syncRunRepository,
		connectionRepository,
		connUsecaseInstance,
		fetcherInstance,
		txnUsecaseInstance,
		cfg.SyncMaxResults,
		defaultHoursBack,
	)

	// Seed the default trusted sender list for every new user
	authUsecaseInstance.SetSignupCallback(senderUsecaseInstance.SeedDefaults)

	// The scheduler is an explicit service owned here, not a global
	scheduler := syncUsecase.NewScheduler(syncUsecaseInstance, schedulerInterval)
	scheduler.Start(0)
	defer scheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(
		authUsecaseInstance,
		connUsecaseInstance,
		syncUsecaseInstance,
		scheduler,
		fetcherInstance,
		txnUsecaseInstance,
		senderUsecaseInstance,
	)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
