package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treasury_api/internal/app/bootstrap"
	"treasury_api/internal/infrastructure/configloader"
	"treasury_api/internal/infrastructure/restapi"
	"treasury_api/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configloader.LoadDotEnv()

	cfgPath := configloader.PathFromEnv()
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	var outputs []string
	if cfg.Logging.File != "" {
		outputs = []string{"stdout", cfg.Logging.File}
	}
	zapLogger, err := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: outputs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Treasury API запускается...", zap.String("config", cfgPath))

	app, err := bootstrap.Build(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Не удалось инициализировать приложение", zap.Error(err))
	}
	defer app.Close()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	var responseCache *restapi.ResponseCache
	if ttl := bootstrap.CacheTTL(cfg); ttl > 0 {
		responseCache = restapi.NewResponseCache(ttl)
		zapLogger.Info("Response cache enabled", zap.Duration("ttl", ttl))
	}

	handler := restapi.NewPortfolioHandler(
		app.Portfolio,
		cfg.ChainProvider.DefaultAPIKey,
		cfg.Server.CacheTimeSeconds,
		responseCache,
		zapLogger,
	)
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		Profiles:       app.Profiles.Profiles(),
		AllowOrigins:   cfg.Server.AllowOrigins,
		SwaggerEnabled: !cfg.Swagger.Disabled,
		SwaggerPath:    cfg.Swagger.SpecPath,
		Logger:         zapLogger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info("Запуск HTTP сервера", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Не удалось запустить HTTP сервер", zap.Error(err))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	zapLogger.Info("Получен сигнал завершения. Завершение работы HTTP сервера...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Ошибка при Graceful Shutdown HTTP сервера", zap.Error(err))
	} else {
		zapLogger.Info("HTTP сервер успешно остановлен.")
	}
}
