package main

import (
	"context"
	stdlog "log"
	"os"
	"runtime"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/client"
	"github.com/cleberrangel/teamsync-api/internal/config"
	"github.com/cleberrangel/teamsync-api/internal/database"
	"github.com/cleberrangel/teamsync-api/internal/embedding"
	"github.com/cleberrangel/teamsync-api/internal/handler"
	"github.com/cleberrangel/teamsync-api/internal/history"
	"github.com/cleberrangel/teamsync-api/internal/llm"
	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/metrics"
	"github.com/cleberrangel/teamsync-api/internal/middleware"
	"github.com/cleberrangel/teamsync-api/internal/migration"
	"github.com/cleberrangel/teamsync-api/internal/repository"
	"github.com/cleberrangel/teamsync-api/internal/service"
	"github.com/cleberrangel/teamsync-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("llm_provider", cfg.LLMProvider).
		Msg("TeamSync API iniciando")

	// Métricas globais
	metrics.Init()

	// Banco de dados
	db, err := database.Connect(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao conectar no banco de dados")
	}
	defer db.Close()

	// Aplica migrações pendentes
	if err := migration.NewMigrator(db).Run(); err != nil {
		log.Fatal().Err(err).Msg("Erro ao executar migrações")
	}

	// Repositórios
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Provedor de LLM e clientes externos
	provider, err := llm.New(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar provedor de LLM")
	}
	embedder := embedding.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.RequestTimeout)
	vectorStore := client.NewQdrantClient(cfg.QdrantURL, cfg.QdrantAPIKey)

	// Hub websocket para progresso de ingestão
	hub := websocket.NewHub()
	go hub.Run()

	// Histórico de conversas em memória
	chatHistory := history.NewStore(30 * time.Minute)
	defer chatHistory.Stop()

	// Serviços
	estimateService := service.NewEstimateService(projectRepo, taskRepo, provider, cfg.SampleCount, cfg.RequestTimeout)
	ingestService := service.NewIngestionService(embedder, vectorStore, service.IngestionConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
	}, hub)
	agentService := service.NewAgentService(provider, taskRepo)
	chatService := service.NewChatService(provider, embedder, vectorStore, chatHistory, agentService)

	// Handlers
	estimateHandler := handler.NewEstimateHandler(estimateService)
	authHandler := handler.NewAuthHandler(userRepo)
	chatbotHandler := handler.NewChatbotHandler(chatService, ingestService, userRepo)
	collectionHandler := handler.NewCollectionHandler(ingestService)
	healthHandler := handler.NewHealthHandler(db, hub, Version)
	wsHandler := handler.NewWebSocketHandler(hub)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	// Inicializa router
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(middleware.MetricsMiddleware())
	r.Use(gin.Recovery())

	// Health e métricas (públicos)
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)
	r.GET("/metrics", healthHandler.GetMetrics)
	r.GET("/metrics/summary", healthHandler.GetMetricsSummary)
	r.GET("/metrics/endpoints", healthHandler.GetEndpointMetrics)

	// Progresso de ingestão via websocket (público)
	r.GET("/ws", wsHandler.HandleConnection)
	r.GET("/ws/stats", wsHandler.GetConnectionStats)

	// Debug memory endpoint (público)
	r.GET("/debug/memory", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(200, gin.H{
			"alloc_mb":      m.Alloc / 1024 / 1024,
			"sys_mb":        m.Sys / 1024 / 1024,
			"heap_alloc_mb": m.HeapAlloc / 1024 / 1024,
			"goroutines":    runtime.NumGoroutine(),
			"gc_runs":       m.NumGC,
		})
	})

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI: cfg.TokenAPI,
	}))
	{
		api.POST("/tasks/estimate-deadline", estimateHandler.EstimateDeadline)

		api.POST("/auth/verify", authHandler.VerifyCredentials)

		api.GET("/chatbot/context", chatbotHandler.ListContexts)
		api.GET("/chatbot/health", chatbotHandler.Health)
		api.POST("/chatbot/:user_id", chatbotHandler.Chat)
		api.GET("/chatbot/:user_id", chatbotHandler.GetHistory)
		api.DELETE("/chatbot/:user_id", chatbotHandler.ClearHistory)

		api.GET("/collections", collectionHandler.ListCollections)
		api.POST("/collections/:name/documents", collectionHandler.IngestDocument)
	}

	// Inicia servidor
	port := cfg.Port
	log.Info().Str("port", port).Msg("Servidor iniciando")

	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		os.Exit(1)
	}
}
