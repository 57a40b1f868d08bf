package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lexsightllc/video-transcriber-app/internal/client"
	"github.com/lexsightllc/video-transcriber-app/internal/config"
	"github.com/lexsightllc/video-transcriber-app/internal/handler"
	"github.com/lexsightllc/video-transcriber-app/internal/media"
	"github.com/lexsightllc/video-transcriber-app/internal/model"
	"github.com/lexsightllc/video-transcriber-app/internal/service"
	"github.com/lexsightllc/video-transcriber-app/internal/store"
	"github.com/lexsightllc/video-transcriber-app/internal/web"
	ws "github.com/lexsightllc/video-transcriber-app/internal/websocket"
	"github.com/lexsightllc/video-transcriber-app/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Job registry with retention-based eviction
	retention := time.Duration(cfg.Jobs.RetentionHours) * time.Hour
	jobs := store.NewJobStore(retention)

	// Media adapters
	inputValidator := media.NewValidator(cfg.Storage.AllowedExtensions, cfg.Storage.MaxUploadBytes)
	extractor := client.NewFFmpegExtractor(cfg.Transcriber.FFmpegPath)
	engine := client.NewWhisperEngine(cfg.Transcriber.WhisperPath, cfg.Transcriber.ModelsDir)

	// Service and handlers
	transcriptionService := service.NewTranscriptionService(cfg, jobs, inputValidator, extractor, engine, hub)
	transcriptionHandler := handler.NewTranscriptionHandler(transcriptionService, validate)

	// Retention janitor
	janitorCtx, cancelJanitor := context.WithCancel(context.Background())
	defer cancelJanitor()
	go jobs.RunJanitor(janitorCtx, 10*time.Minute, transcriptionService.RemoveArtifacts)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(cfg.Storage.MaxUploadBytes) + 1024*1024,
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Upload/progress/download page
	app.Get("/", web.Index(cfg))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"ffmpeg":  binaryAvailable(cfg.Transcriber.FFmpegPath),
				"whisper": binaryAvailable(cfg.Transcriber.WhisperPath),
				"models":  dirExists(cfg.Transcriber.ModelsDir),
			},
		})
	})

	// API routes
	api := app.Group("/api")

	submitLimiter := limiter.New(limiter.Config{
		Max:        cfg.RateLimit.UploadsPerHour,
		Expiration: time.Hour,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(response.ErrorResponse{
				Error: response.ErrorBody{
					Code:    "RATE_LIMITED",
					Message: "Upload limit reached, try again later",
				},
			})
		},
	})
	api.Post("/jobs", submitLimiter, transcriptionHandler.Submit)
	api.Get("/jobs/:jobId", transcriptionHandler.Status)
	api.Get("/jobs/:jobId/result", transcriptionHandler.Result)
	api.Get("/jobs/:jobId/download", transcriptionHandler.Download)

	// Metadata for front ends building their pickers
	api.Get("/options", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"modelTiers":        model.ValidModelTiers,
			"languages":         model.ValidLanguages,
			"defaultModelTier":  cfg.Transcriber.DefaultModelTier,
			"allowedExtensions": cfg.Storage.AllowedExtensions,
			"maxUploadBytes":    cfg.Storage.MaxUploadBytes,
		})
	})

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// binaryAvailable reports whether a tool can be resolved from PATH or an
// absolute location.
func binaryAvailable(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(response.ErrorResponse{
		Error: response.ErrorBody{
			Code:    "SERVICE_ERROR",
			Message: message,
		},
	})
}
