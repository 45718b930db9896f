package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tokyosushibar/backend/app/auth"
	"github.com/tokyosushibar/backend/app/catalog"
	appgraphql "github.com/tokyosushibar/backend/app/graphql"
	"github.com/tokyosushibar/backend/app/orders"
	"github.com/tokyosushibar/backend/app/payments"
	"github.com/tokyosushibar/backend/app/uploads"
	"github.com/tokyosushibar/backend/config"
	"github.com/tokyosushibar/backend/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}
	if cfg.MollieAPIKey == "" {
		logger.Fatal().Msg("MOLLIE_API_TOKEN is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	productsRepo := models.NewProductsRepositoryWithPageSize(db, cfg.DefaultPageSize)
	categoriesRepo := models.NewCategoriesRepository(db)
	ordersRepo := models.NewOrdersRepository(db)
	usersRepo := models.NewUsersRepository(db)

	paymentClient, err := payments.NewMollieClient(cfg.ExternalTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize payment client")
	}

	var notifier orders.FulfillmentNotifier
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := orders.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaOrderTopic).Msg("fulfillment notifications enabled")
	} else {
		logger.Info().Msg("no Kafka brokers configured, fulfillment notifications disabled")
	}

	catalogService := catalog.NewService(productsRepo, categoriesRepo)
	orderService := orders.NewService(ordersRepo, productsRepo, usersRepo, paymentClient, notifier, orders.Config{
		UIBaseURL: cfg.UIBaseURL,
	})
	authService := auth.NewService(usersRepo, auth.Config{
		TokenURL:     cfg.OAuthTokenURL,
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		Timeout:      cfg.ExternalTimeout,
	})

	storage, err := uploads.NewS3Storage(context.Background(), cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.ExternalTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	pipeline := uploads.NewPipeline(storage, productsRepo, productsRepo, uploads.DefaultEncoders())

	schema, err := appgraphql.New(catalogService, orderService, authService)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build schema")
	}

	graphqlHandler := appgraphql.NewHandler(schema)
	uploadHandler := uploads.NewUploadHandler(pipeline)
	webhookHandler := payments.NewWebhookHandler(paymentClient, orderService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(auth.Middleware(cfg.JWTSecret))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/graphql", graphqlHandler.HandleQuery)
	router.POST("/api/upload", uploadHandler.HandleUploadImage)
	router.POST("/api/mollie/webhook", webhookHandler.HandleUpdateStatus)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
