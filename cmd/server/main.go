package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiorgiUbiria/ewallet/configs"
	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/events"
	"github.com/GiorgiUbiria/ewallet/internal/handlers"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"github.com/GiorgiUbiria/ewallet/internal/routes"
	"github.com/GiorgiUbiria/ewallet/internal/seed"
	"github.com/GiorgiUbiria/ewallet/internal/store"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"go.uber.org/zap"
)

func main() {
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Log.Sync()

	cfg, err := configs.LoadConfig()
	if err != nil {
		logger.Log.Fatal("failed to load config", zap.Error(err))
	}
	logger.Init(cfg.App.Env)

	db, err := store.NewDB(cfg.DB)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	logger.Log.Info("connected to the database")

	if err := store.Migrate(db); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}
	logger.Log.Info("migrations loaded")

	txm := store.NewTxManager(db)
	accounts := store.NewAccountRepository(db)
	ledger := store.NewLedgerRepository(db)
	outbox := store.NewOutboxRepository(db)

	if cfg.App.Seed {
		if _, err := seed.Run(context.Background(), txm, accounts, cfg.Wallet.StartingBalance); err != nil {
			logger.Log.Fatal("seed failed", zap.Error(err))
		}
	}

	engine := wallet.NewEngine(txm, accounts, ledger, outbox)
	tokens := auth.NewTokens(cfg.JWT.SECRET, cfg.JWT.TTL)
	authSvc := auth.NewService(accounts, tokens, cfg.Wallet.StartingBalance)

	h := handlers.New(engine, authSvc, accounts, handlers.Settings{
		MaxTransferAmount: cfg.Wallet.MaxTransferAmount,
		OperationTimeout:  cfg.Wallet.OperationTimeout,
		StartingBalance:   cfg.Wallet.StartingBalance,
		IsAdmin:           cfg.IsAdmin,
	})
	router := routes.NewRoutes(h, tokens)

	var publisher events.Publisher = events.LogPublisher{}
	if cfg.RabbitMQ.URL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Log.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer rmq.Close()
		publisher = rmq
		logger.Log.Info("publishing wallet events to rabbitmq", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker := events.NewOutboxWorker(outbox, publisher, events.WorkerConfig{
		Interval:    cfg.Outbox.Interval,
		BatchSize:   cfg.Outbox.BatchSize,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	}, logger.Log.Named("outbox"))
	workerDone := make(chan struct{})
	go func() {
		worker.Run(workerCtx)
		close(workerDone)
	}()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}

	stopWorker()
	<-workerDone

	if err := store.Close(db); err != nil {
		logger.Log.Error("db close failed", zap.Error(err))
	} else {
		logger.Log.Info("db closed")
	}

	logger.Log.Info("server stopped")
}
