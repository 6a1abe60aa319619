package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediazip/internal/api"
	"mediazip/internal/config"
	"mediazip/internal/loader"
	"mediazip/internal/logger"
	"mediazip/internal/manager"
	"mediazip/internal/memstor"
	"mediazip/internal/protect"
	"mediazip/internal/provider"
	"mediazip/internal/static"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger.SetupDefault(cfg.Logger)

	slog.Debug("server config", "cfg", cfg)

	client := protect.NewHTTPClient()
	stor := memstor.New(memstor.Config{
		MaxTotal: cfg.Manager.MaxTotal,
		MaxFiles: cfg.Manager.MaxFiles,
		TaskTTL:  cfg.Manager.TaskTTL,
	})
	defer stor.Cancel()
	provider := provider.New(client, cfg.Provider.BaseURL, cfg.Provider.Timeout)
	loader := loader.New(client, cfg.Loader.AllowMIMETypes)
	manager := manager.New(cfg.Manager, cfg.Pattern, stor, provider, loader)

	var assets http.Handler
	if cfg.Server.StaticDir != "" {
		assets = static.New(cfg.Server.StaticDir)
	}

	server := newServer(cfg.Server.Addr, api.New(manager, assets, slog.Default()))

	done := make(chan int)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		s := <-c
		slog.Info("shutdown by signal", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}

		close(done)
	}()

	slog.Info("server startup", "addr", server.Addr, "static", cfg.Server.StaticDir)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		stor.Cancel()
		os.Exit(1)
	}

	<-done
}

// newServer создаёт HTTP-сервер с разумными таймаутами для потоковой загрузки.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,

		// Таймауты на уровне соединения
		ReadTimeout:       5 * time.Second, // сколько времени даём клиенту на отправку запроса
		ReadHeaderTimeout: 3 * time.Second, // сколько ждём только заголовки
		WriteTimeout:      5 * time.Minute, // сколько времени даём на отправку ответа (важно для потоковой загрузки!)
		IdleTimeout:       1 * time.Minute, // для keep-alive соединений

		// Ограничение на размер заголовков
		MaxHeaderBytes: 8192, // 8 KB
	}
}
