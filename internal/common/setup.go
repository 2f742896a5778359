package common

import (
	"context"
	"log"
	"strings"

	"community-credits-go/internal/api"
	"community-credits-go/internal/audit"
	"community-credits-go/internal/database"
	"community-credits-go/internal/models"
	"community-credits-go/internal/notify"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService     *database.Service
	CreditService *api.CreditService
	Dispatcher    *notify.Dispatcher
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	dispatcher := notify.NewDispatcher(nil, 64)
	creditService := api.NewCreditService(dbService, audit.NewRecorder(dbService), dispatcher)

	return &Services{
		DbService:     dbService,
		CreditService: creditService,
		Dispatcher:    dispatcher,
	}, nil
}

func (cs *Services) Close() {
	if cs.Dispatcher != nil {
		cs.Dispatcher.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
