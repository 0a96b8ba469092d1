package main

import (
	"context"
	"log"

	"chatgraph/config"
	"chatgraph/internal/events"
	"chatgraph/internal/gql"
	"chatgraph/internal/handler"
	"chatgraph/internal/middleware"
	appredis "chatgraph/internal/redis"
	"chatgraph/internal/repository"
	"chatgraph/internal/server"
	"chatgraph/internal/services"
	"chatgraph/internal/storage"
	"chatgraph/internal/websocket"
	"chatgraph/pkg/database"
	"chatgraph/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.LogMode)
	defer l.Sync()
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	db, err := database.Connect(cfg)
	if err != nil {
		l.Errorf("Failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)

	var (
		redisClient *goredis.Client
		bus         events.Bus = events.NewLocalBus()
		userCache   services.UserCache
		limiter     middleware.Limiter
	)
	if cfg.RedisEnabled {
		redisClient, err = appredis.NewClient(ctx, appredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			l.Errorf("Failed to connect to redis: %v", err)
			return
		}
		defer redisClient.Close()

		bus = events.NewRedisBus(redisClient, l)
		userCache = appredis.NewCacheStore(redisClient, appredis.CacheConfig{UserTTL: cfg.UserCacheTTL})
		limiter = appredis.NewRateLimiter(redisClient, appredis.RateLimitConfig{
			AuthLimit:     cfg.RateLimitAuth,
			MutationLimit: cfg.RateLimitMutations,
			Window:        cfg.RateLimitWindow,
		})
	} else {
		l.Warnf("Redis disabled: using in-process events, no user cache and no rate limiting")
	}

	var presigner services.ObjectPresigner
	if cfg.S3Enabled() {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			l.Errorf("Failed to configure S3: %v", err)
			return
		}
		presigner = s3Client
	}

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, userCache)
	chatService := services.NewChatService(chatRepo, userService, bus, l)
	uploadService := services.NewUploadService(presigner)

	schema, err := gql.NewSchema(gql.NewResolver(chatService, userService, bus), l)
	if err != nil {
		l.Errorf("Failed to parse GraphQL schema: %v", err)
		return
	}

	hub := websocket.NewHub()
	srv := server.New(cfg, l)
	srv.OnShutdown(hub.CloseAll)
	srv.SetupRoutes(&server.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		GraphQL:   handler.NewGraphQLHandler(schema, l),
		Upload:    handler.NewUploadHandler(uploadService),
		Health:    handler.NewHealthHandler(db, redisClient),
		WebSocket: websocket.NewHandler(authService, schema, hub, l),
	}, authService, limiter)

	if err := srv.Start(); err != nil {
		l.Errorf("Server stopped with error: %v", err)
	}
}
