// Command server runs the payroll reconciliation HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	// Optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var (
		port        = flag.String("port", envOr("PORT", "8080"), "HTTP port")
		dbPath      = flag.String("db", envOr("DB_PATH", "payroll.db"), "SQLite database path")
		readTimeout = flag.Duration("read-timeout", envDurationOr("READ_TIMEOUT", payroll.DefaultReadTimeout), "collaborator read timeout")
	)
	flag.Parse()

	logger := api.NewLogger(slog.LevelInfo)

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to open store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service := payroll.NewService(payroll.Deps{
		Records:      store,
		Revenue:      store,
		Expenses:     store,
		Movements:    store,
		Handovers:    store,
		PeerReceipts: store,
		ReadTimeout:  *readTimeout,
	})

	handler := api.NewHandler(service, store, logger)
	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("payroll engine listening", "port", *port, "db", *dbPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s=%q, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}
