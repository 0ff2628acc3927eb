package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/terangahq/teranga-backend/internal/core/ai"
	"github.com/terangahq/teranga-backend/internal/core/delivery"
	"github.com/terangahq/teranga-backend/internal/handlers"
	"github.com/terangahq/teranga-backend/internal/jobs"
	"github.com/terangahq/teranga-backend/internal/repositories"
	"github.com/terangahq/teranga-backend/internal/services"
	"github.com/terangahq/teranga-backend/internal/shared/config"
	"github.com/terangahq/teranga-backend/internal/shared/database"
	"github.com/terangahq/teranga-backend/internal/shared/utils"
)

// @title Teranga Restaurant Chatbot API
// @version 1.0
// @description WhatsApp ordering chatbot backend for restaurants
// @host localhost:8080
// @BasePath /
func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Info().Str("port", cfg.Port).Msg("starting api")

	// Database
	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Repositories
	businessRepo := repositories.NewBusinessRepo(db.GORM)
	menuRepo := repositories.NewMenuRepo(db.GORM)
	conversationRepo := repositories.NewConversationRepo(db.GORM)
	orderRepo := repositories.NewOrderRepo(db.GORM)
	dedupRepo := repositories.NewDedupRepo(db.GORM, time.Duration(cfg.DedupRetentionHours)*time.Hour)

	// AI engine
	model := ai.NewOpenAIModel(cfg.OpenAIKey, cfg.LLMModel)
	engine := ai.NewEngine(model, menuRepo, orderRepo, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	log.Info().Str("model", model.Name()).Msg("llm engine ready")

	// Outbound senders
	policy := delivery.DefaultRetryPolicy()
	deliveryTimeout := time.Duration(cfg.DeliveryTimeoutSeconds) * time.Second
	metaSender := delivery.NewMetaSender(cfg.MetaAPIVersion, deliveryTimeout, policy)
	lamSender := delivery.NewLAMSender(cfg.LAMAPIURL, cfg.LAMAPIKey, deliveryTimeout, policy)

	// Pipeline
	resolver := services.NewResolver(businessRepo, conversationRepo)
	pipeline := services.NewPipeline(resolver, dedupRepo, engine, conversationRepo, metaSender, lamSender)

	// Background retention jobs
	retention := jobs.NewRetention(dedupRepo, conversationRepo, cfg.ConversationRetentionDays)
	if err := retention.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start retention scheduler")
	}
	defer retention.Stop()

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(pipeline, businessRepo)
	businessHandler := handlers.NewBusinessHandler(businessRepo)
	menuHandler := handlers.NewMenuHandler(menuRepo)
	orderHandler := handlers.NewOrderHandler(orderRepo)

	app := fiber.New(fiber.Config{
		AppName: "Teranga Chatbot API",
	})

	app.Use(cors.New())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Webhook routes
	app.Get("/webhook/:businessID", webhookHandler.VerifyWebhook)
	app.Post("/webhook/:businessID", webhookHandler.ReceiveMetaWebhook)
	app.Post("/webhook/:businessID/lam", webhookHandler.ReceiveLAMWebhook)

	// Business routes
	app.Get("/businesses/:id", businessHandler.GetBusiness)
	app.Put("/businesses/:id", businessHandler.UpdateBusiness)

	// Menu routes
	app.Get("/businesses/:businessID/menu", menuHandler.ListMenu)
	app.Post("/businesses/:businessID/menu", menuHandler.CreateMenuItem)
	app.Put("/businesses/:businessID/menu/:id", menuHandler.UpdateMenuItem)
	app.Delete("/businesses/:businessID/menu/:id", menuHandler.DeleteMenuItem)

	// Order routes
	app.Get("/businesses/:businessID/orders", orderHandler.ListOrders)
	app.Get("/orders/:id", orderHandler.GetOrder)
	app.Put("/orders/:id", orderHandler.UpdateOrder)

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
