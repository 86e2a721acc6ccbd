package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ourlovestory/scrapbook/handlers"
	"github.com/ourlovestory/scrapbook/internal/config"
	"github.com/ourlovestory/scrapbook/internal/database"
	"github.com/ourlovestory/scrapbook/internal/delivery"
	"github.com/ourlovestory/scrapbook/internal/history"
	"github.com/ourlovestory/scrapbook/internal/preview"
	"github.com/ourlovestory/scrapbook/internal/render"
	"github.com/ourlovestory/scrapbook/internal/scrapbook/service"
	"github.com/ourlovestory/scrapbook/internal/tokens"
	"github.com/ourlovestory/scrapbook/pkg/logger"
	"github.com/ourlovestory/scrapbook/pkg/metrics"
	"github.com/ourlovestory/scrapbook/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v app_url=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Export.AppURL)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so both the token store and the rate limiter
	// can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// MongoDB with retry/backoff to tolerate startup races
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			mongoClient = nil
		} else {
			defer func() { _ = mongoClient.Disconnect(ctx) }()
		}
	}

	// scrapbook persistence: Mongo when available, memory otherwise
	var scrapbookSvc service.Service
	if mongoClient != nil {
		col := mongoClient.Database(cfg.MongoDB.Database).Collection("scrapbooks")
		scrapbookSvc = service.NewMongoService(col)
	} else {
		logger.Warnf("using in-memory scrapbook store; data is lost on restart")
		scrapbookSvc = service.NewMemoryService()
	}

	// export token store precedence: Redis (storage-level TTL) > Mongo > memory
	var tokenRepo preview.Repository
	switch {
	case redisClient != nil:
		tokenRepo = preview.NewRedisRepository(redisClient, "pdfpreview:")
		logger.Infof("export tokens stored in Redis")
	case mongoClient != nil:
		tokenRepo = preview.NewMongoRepository(mongoClient.Database(cfg.MongoDB.Database).Collection("pdfPreviews"))
		logger.Infof("export tokens stored in MongoDB")
	default:
		tokenRepo = preview.NewMemoryRepository()
	}
	tokenSvc := preview.NewService(tokenRepo)

	// delivery channel: exports are disabled without object storage
	var store *delivery.MinIOStorage
	if mcfg := delivery.LoadMinIOConfig(); mcfg.Endpoint != "" {
		store, err = delivery.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize MinIO (%s): %v", mcfg.Endpoint, err)
			store = nil
		}
	} else {
		logger.Warnf("MINIO_ENDPOINT not set; PDF export disabled")
	}

	if store != nil {
		driver := render.NewChromeDriver()
		driver.NavigationTimeout = cfg.Export.NavigationTimeout
		driver.ReadyTimeout = cfg.Export.ReadyTimeout
		driver.SettleDelay = cfg.Export.SettleDelay

		worker := render.NewWorker(tokenSvc, driver, store, cfg.Export.AppURL)
		worker.Record = func(ctx context.Context, ownerID, objectPath, fileName, status string) {
			rec := &history.Record{OwnerID: ownerID, ObjectPath: objectPath, FileName: fileName, Status: status}
			if err := history.Save(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, rec); err != nil {
				logger.Warnf("failed to record export: %v", err)
			}
		}
		handlers.RegisterExportRoutes(r, worker, cfg.Export.RequestTimeout)
	}

	handlers.RegisterPreviewRoutes(r, tokenSvc)

	verifier := tokens.NewJWTVerifier(cfg.JWT.Secret)
	handlers.RegisterScrapbookRoutes(r, scrapbookSvc, tokenSvc, middleware.AuthMiddleware(verifier))
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the export pipeline can actually run
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["storage"] = store != nil
		if store == nil {
			ready = false
		}
		if cfg.MongoDB.URI != "" {
			deps["mongo"] = mongoClient != nil
			if mongoClient == nil {
				ready = false
			}
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		}

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting scrapbook service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
