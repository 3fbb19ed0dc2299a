package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/career-planner/internal/config"
	"alfredoptarigan/career-planner/internal/handlers"
	"alfredoptarigan/career-planner/internal/logger"
	"alfredoptarigan/career-planner/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	log.Info("config loaded", "env", cfg.Server.Env, "provider", cfg.LLM.Provider)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", "path", cfg.Storage.UploadPath, "error", err)
	}

	extractor := services.NewDocumentExtractor(
		services.NewPDFParserService(),
		services.NewDocxParserService(),
		log,
	)
	normalizer := services.NewResponseNormalizer(log)

	promptBuilder, err := services.NewPromptBuilder()
	if err != nil {
		log.Fatal("failed to load prompt templates", "error", err)
	}

	chatService, err := newChatService(cfg, normalizer, log)
	if err != nil {
		log.Fatal("failed to initialize chat completion provider", "error", err)
	}
	log.Info("chat completion provider ready", "provider", chatService.Provider(), "model", chatService.Model())

	advisor, err := services.NewCareerAdvisorService(promptBuilder, extractor, chatService, normalizer, log)
	if err != nil {
		log.Fatal("failed to initialize career advisor", "error", err)
	}

	// Initialize handlers
	form := handlers.NewFormReader(storageService, log)
	h := handlers.Handlers{
		Analyze: handlers.NewAnalyzeHandler(advisor, form, log),
		Career:  handlers.NewCareerHandler(advisor, form, log),
		Stream:  handlers.NewStreamHandler(advisor, form, log),
		Health:  handlers.NewHealthHandler(chatService),
	}

	// Create Fiber app. Streams can run for minutes, so no write timeout.
	app := fiber.New(fiber.Config{
		AppName:      "Career Planner API",
		ReadTimeout:  30 * time.Second,
		IdleTimeout:  2 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(app, h, cfg.Static.Dir, cfg.Static.Index)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", "addr", addr, "index", fmt.Sprintf("http://localhost%s/", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", "error", err)
	}
}

func newChatService(cfg *config.Config, normalizer *services.ResponseNormalizer, log *logger.Logger) (services.ChatCompletionService, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return services.NewGeminiService(context.Background(), cfg.Gemini, cfg.LLM.Temperature, log)
	default:
		return services.NewDeepSeekService(cfg.LLM, normalizer, log), nil
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
