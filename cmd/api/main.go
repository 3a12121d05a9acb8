package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"minesweeper-backend/internal/config"
	"minesweeper-backend/internal/handlers"
	"minesweeper-backend/internal/middleware"
	"minesweeper-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store services.SessionStore
	if cfg.RedisAddr != "" {
		redisService, err := services.NewRedisService(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisService
		log.Printf("Using Redis session store at %s", cfg.RedisAddr)
	} else {
		store = services.NewMemoryStore(cfg.HistoryLimit)
		log.Println("REDIS_ADDR not set, using in-memory session store")
	}
	defer store.Close()

	jwtService := services.NewJWTService(cfg)

	gameEngine := services.NewGameEngine(store)
	wsHandler := handlers.NewWebSocketHandler(gameEngine)
	gameEngine.SetBroadcaster(wsHandler)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			gameEngine.CleanupStaleGames(cfg.StaleTimeout)
		}
	}()

	authHandler := handlers.NewAuthHandler(store, jwtService)
	gameHandler := handlers.NewGameHandler(gameEngine)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/guest", authHandler.Guest)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", authHandler.GetCurrentPlayer)
		protected.POST("/logout", authHandler.Logout)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			games.GET("/presets", gameHandler.GetPresets)
			games.POST("", gameHandler.CreateGame)
			games.GET("/active", gameHandler.GetActiveGames)
			games.GET("/history", gameHandler.GetGameHistory)
			games.GET("/:id", gameHandler.GetGame)

			moves := games.Group("/:id")
			moves.Use(middleware.RateLimit(30, time.Second))
			{
				moves.POST("/reveal", gameHandler.Reveal)
				moves.POST("/flag", gameHandler.ToggleFlag)
			}
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
