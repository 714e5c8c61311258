package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elearn/cache"
	"elearn/config"
	"elearn/database"
	"elearn/logger"
	"elearn/realtime"
	"elearn/routers"
	"elearn/storage"
	"elearn/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	if err := logger.Init(cfg.LogMode); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()

	if err := database.ConnectDb(cfg); err != nil {
		logger.Log.Fatal("database connection failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("cache setup failed", "error", err)
	}
	cache.Default = store

	provider, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("storage setup failed", "provider", cfg.StorageProvider, "error", err)
	}
	storage.Default = provider

	utils.Mail = utils.NewMailer(cfg)
	utils.Tasks = utils.NewTaskRunner(cfg.TaskWorkers, 256)

	realtime.DefaultHub = realtime.NewHub(logger.Log)
	broker, err := realtime.NewBroker(cfg, logger.Log)
	if err != nil {
		logger.Log.Fatal("chat broker setup failed", "error", err)
	}
	if err := broker.Start(ctx, realtime.DefaultHub.Deliver); err != nil {
		logger.Log.Fatal("chat broker start failed", "error", err)
	}
	realtime.DefaultBroker = broker

	scheduler := utils.InitializeScheduler()

	app := routers.New(cfg)

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Log.Info("server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.Error("server stopped", "error", err)
	}

	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	utils.Tasks.Shutdown(shutdownCtx)
	_ = broker.Close()
}
