// Package main runs the lead-capture HTTP server with WebSocket dashboard
// feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scanlead/backend/config"
	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/internal/bootstrap"
	"github.com/scanlead/backend/internal/clients"
	"github.com/scanlead/backend/internal/emaillogs"
	"github.com/scanlead/backend/internal/middleware"
	"github.com/scanlead/backend/internal/qrcode"
	"github.com/scanlead/backend/internal/realtime"
	"github.com/scanlead/backend/internal/registrations"
	"github.com/scanlead/backend/internal/stats"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/internal/store/memory"
	"github.com/scanlead/backend/internal/store/postgres"
	"github.com/scanlead/backend/pkg/database"
	"github.com/scanlead/backend/pkg/queue"
	"github.com/scanlead/backend/pkg/redis"
	"github.com/scanlead/backend/pkg/response"
	"github.com/scanlead/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var (
		clientStore       store.ClientStore
		registrationStore store.RegistrationStore
		scanStore         store.ScanStore
		emailLogStore     store.EmailLogStore
	)
	switch cfg.Store.Driver {
	case "memory":
		mem := memory.New()
		clientStore = mem
		registrationStore = mem.Registrations()
		scanStore = mem.Scans()
		emailLogStore = mem.EmailLogs()
		logger.Info("using in-memory store (data is not persisted)")
	default:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		clientStore = postgres.NewClientStore(pool)
		registrationStore = postgres.NewRegistrationStore(pool)
		scanStore = postgres.NewScanStore(pool)
		emailLogStore = postgres.NewEmailLogStore(pool)
	}

	// Redis drives the email queue and the cross-instance dashboard feed.
	// Without it the server still works: events fan out locally and no
	// confirmation emails are queued.
	var (
		jobQueue    *queue.Queue
		redisPubSub *realtime.RedisPubSub
	)
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, queue and feed bridging disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		jobQueue = queue.NewQueue(rdb.Client, logger)
		redisPubSub = realtime.NewRedisPubSub(rdb.Client, logger)
	}

	var hub *realtime.Hub
	if redisPubSub != nil {
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}

	var images clients.QRImageStore
	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			QRBucket:             cfg.AWS.QRBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			images = s3Client
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	clientService := clients.NewService(clientStore, registrationStore, logger)
	booter := bootstrap.New(cfg.Bootstrap, clientStore, clientService, logger)
	if err := booter.Run(ctx); err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}

	authHandler := auth.NewHandler(clientStore, jwtService, booter, logger)
	clientHandler := clients.NewHandler(clientService, qrcode.LibraryRenderer{}, images, cfg.Public.BaseURL, logger)
	registrationHandler := registrations.NewHandler(clientStore, registrationStore, scanStore, jobQueue, hub, logger)
	statsHandler := stats.NewHandler(clientStore, registrationStore, scanStore, logger)
	emailLogHandler := emaillogs.NewHandler(clientStore, emailLogStore, logger)

	jwtValidate := func(token string) (clientID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.ClientID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public landing page: QR scan resolves the code, form POST registers.
	router.GET("/register/:code", registrationHandler.ShowLanding)
	router.POST("/register/:code", registrationHandler.Submit)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
	}

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/auth/change-password", authHandler.ChangePassword)

		// Admin client management
		api.POST("/clients", middleware.RequireRole("admin"), clientHandler.Create)
		api.GET("/clients", middleware.RequireRole("admin"), clientHandler.List)
		api.GET("/clients/:id", middleware.RequireRole("admin"), clientHandler.Get)
		api.DELETE("/clients/:id", middleware.RequireRole("admin"), clientHandler.Delete)
		api.GET("/clients/:id/registrations", middleware.RequireRole("admin"), registrationHandler.ListByClient)
		api.GET("/clients/:id/stats", middleware.RequireRole("admin"), statsHandler.ClientStats)
		api.GET("/clients/:id/emails", middleware.RequireRole("admin"), emailLogHandler.ListByClient)

		// Authenticated client's own dashboard
		api.GET("/me", clientHandler.Me)
		api.PATCH("/me", clientHandler.UpdateMyURL)
		api.GET("/me/qr", clientHandler.MyQR)
		api.GET("/me/registrations", registrationHandler.MyRegistrations)
		api.GET("/me/registrations/export", registrationHandler.ExportCSV)
		api.GET("/me/stats", statsHandler.MyStats)
		api.GET("/me/emails", emailLogHandler.MyEmails)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
