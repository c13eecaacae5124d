package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/adapters/audio"
	"github.com/wildcloud007/greenguard/adapters/bookinglog"
	"github.com/wildcloud007/greenguard/adapters/gemini"
	"github.com/wildcloud007/greenguard/internal/api"
	"github.com/wildcloud007/greenguard/internal/auth"
	"github.com/wildcloud007/greenguard/internal/config"
	"github.com/wildcloud007/greenguard/internal/monitor"
	"github.com/wildcloud007/greenguard/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize adapters
	opener, err := gemini.NewOpener(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	input := audio.NewFFmpegInput(logger)
	output := audio.NewFFplayOutput(logger)
	bookings := bookinglog.NewMemory()

	// Initialize monitor hub feeding connected dashboards
	hub := monitor.NewHub(logger)
	go hub.Run()

	// Initialize the voice session
	session := usecase.NewSession(
		usecase.SessionConfig{
			Model:             cfg.Model,
			SystemInstruction: cfg.SystemInstruction,
			InputSampleRate:   cfg.InputSampleRate,
			OutputSampleRate:  cfg.OutputSampleRate,
			FrameSamples:      cfg.FrameSamples,
		},
		opener,
		input,
		output,
		bookings,
		hub,
		logger,
	)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	tokens := auth.NewTokenService(cfg.JWTSecret)
	server := api.NewServer(session, bookings, hub, tokens, cfg.JWTSecret, logger)
	server.InitRoutes(e)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.HTTPPort), zap.String("model", cfg.Model))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	session.Disconnect()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
