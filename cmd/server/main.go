package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solpool/backend/config"
	"github.com/solpool/backend/db"
	"github.com/solpool/backend/internal/notifier"
	"github.com/solpool/backend/internal/repository"
	"github.com/solpool/backend/internal/server"
	"github.com/solpool/backend/internal/service"
	solanaclient "github.com/solpool/backend/internal/solana"
	"github.com/solpool/backend/utils"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		utils.InitLogger("info").Fatal("Failed to load config: ", err)
	}
	logger := utils.InitLogger(cfg.LogLevel)

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	mongoDB, err := db.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		logger.Fatal("Failed to connect MongoDB: ", err)
	}

	repo := repository.NewRepository(database, logger)
	docs := repository.NewDocumentStore(mongoDB, logger)

	var alerts service.Notifier
	if cfg.TelegramBotToken != "" {
		tg, err := notifier.NewTelegram(cfg.TelegramBotToken, cfg.AdminChatID, logger)
		if err != nil {
			logger.Warnf("Telegram notifier disabled: %v", err)
		} else {
			alerts = tg
		}
	}

	svc := service.NewService(repo, docs, alerts, logger)

	// The gateway is optional: pool routes keep serving when the chain
	// side is unconfigured or unreachable.
	var gateway server.SolanaGateway
	if cfg.SolanaProgramID != "" && cfg.ServiceWalletKey != "" {
		client, err := solanaclient.NewClient(cfg.SolanaRPCURL, cfg.SolanaProgramID, cfg.ServiceWalletKey, logger)
		if err != nil {
			logger.Warnf("Solana gateway disabled: %v", err)
		} else {
			gateway = client
		}
	} else {
		logger.Warn("Solana gateway not configured, /api/solana routes will answer 503")
	}

	srv := server.New(svc, gateway, cfg.CorsOrigin, logger)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Infof("Server running on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Failed to shut down HTTP server: %v", err)
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		logger.Errorf("Failed to close MongoDB connection: %v", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Graceful shutdown completed")
}
