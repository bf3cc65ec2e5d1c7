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

	"med-overflow/internal/clients"
	"med-overflow/internal/config"
	"med-overflow/internal/database"
	"med-overflow/internal/handlers"
	"med-overflow/internal/metrics"
	"med-overflow/internal/search"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting med-overflow API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Name),
	)

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database.URI, cfg.Database.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect to the document store", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(shutdownCtx); err != nil {
			logger.Error("failed to close the document store", zap.Error(err))
		}
	}()

	server := &handlers.Server{
		Logger:    logger,
		Questions: db,
		Tags:      db,
		Users:     db,
		Answers:   db,
		Views:     db,
		Search:    search.NewEngine(logger, search.StoreSearchers(db)...),
		Booking:   clients.NewBookingClient(cfg.Booking.BaseURL, cfg.Booking.APIKey, logger),
		Bookings:  db,
		Chat: clients.NewChatClient(clients.ChatConfig{
			APIKey:  cfg.Chat.APIKey,
			BaseURL: cfg.Chat.BaseURL,
			Model:   cfg.Chat.Model,
			Logger:  logger,
		}),
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Routes(metrics.Middleware()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
