package main

import (
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"caira-engine/internal/config"
	"caira-engine/internal/handler"
	"caira-engine/internal/httpserver"
	"caira-engine/internal/repository"
	"caira-engine/internal/service/auth"
	"caira-engine/internal/service/engine"
	"caira-engine/internal/service/llm"
	"caira-engine/pkg/db"
	"caira-engine/pkg/logger"
	"caira-engine/pkg/mq"
	"caira-engine/pkg/redis"
)

func main() {
	// Load .env before config so env overrides pick it up
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logger.New(cfg.Log.Level)
	defer logger.Sync()

	if cfg.LLM.APIKey == "" {
		logger.Warn("TOGETHER_API_KEY not set, model calls will fail until configured")
	}

	// Model client
	llmClient := llm.NewTogetherClient(cfg.LLM, logger)

	// Optional infrastructure: history (redis), interaction log (postgres),
	// event publishing (rabbitmq). The engine degrades to no-ops without them.
	var history engine.HistoryStore = engine.NopHistoryStore{}
	var interactions engine.InteractionLog = engine.NopInteractionLog{}
	var events engine.EventPublisher = engine.NopEventPublisher{}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(cfg.Redis)
		history = repository.NewHistoryStore(redisClient)
		logger.Info("Conversation history enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}

	var pool *pgxpool.Pool
	var authHandler *handler.AuthHandler
	var interactionReader handler.InteractionReader
	if cfg.DB.Enabled() {
		pool, err = db.NewConnection(cfg.DB, logger)
		if err != nil {
			logger.Fatal("DB initialization failed", zap.Error(err))
		}
		defer pool.Close()

		interactionRepo := repository.NewInteractionRepository(pool)
		interactions = interactionRepo
		interactionReader = interactionRepo

		if cfg.JWT.Enabled() {
			userRepo := repository.NewUserRepository(pool)
			authService := auth.NewService(userRepo, cfg.JWT.Secret)
			authHandler = handler.NewAuthHandler(authService)
		}
	}

	if cfg.MQ.Enabled() {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			logger.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
		logger.Info("Event publishing enabled")
	}

	// Engine
	eng := engine.New(llmClient, cfg.LLM, history, interactions, events, logger)

	// Handlers
	processHandler := handler.NewProcessHandler(eng, logger)
	historyHandler := handler.NewHistoryHandler(eng, interactionReader, logger)
	metaHandler := handler.NewMetaHandler(eng, cfg.LLM.APIKey != "")

	jwtSecret := ""
	if authHandler != nil {
		jwtSecret = cfg.JWT.Secret
	}

	router := httpserver.NewRouter(
		processHandler,
		historyHandler,
		metaHandler,
		authHandler,
		jwtSecret,
		pool,
		redisClient,
	)

	logger.Info("Starting Caira engine",
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.LLM.Model),
	)
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}
