package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/config"
	"github.com/afisha-events/backend/internal/auth"
	"github.com/afisha-events/backend/internal/categories"
	"github.com/afisha-events/backend/internal/events"
	"github.com/afisha-events/backend/internal/favorites"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/internal/organizer"
	"github.com/afisha-events/backend/internal/rsvp"
	"github.com/afisha-events/backend/internal/support"
	"github.com/afisha-events/backend/internal/users"
	"github.com/afisha-events/backend/pkg/database"
	"github.com/afisha-events/backend/pkg/queue"
	pkgredis "github.com/afisha-events/backend/pkg/redis"
	"github.com/afisha-events/backend/pkg/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	redisClient, err := pkgredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	jobQueue := queue.NewQueue(redisClient.Client, logger)

	var s3 *storage.S3
	if cfg.AWS.Region != "" {
		s3, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AvatarsBucket:        cfg.AWS.AvatarsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Fatal("create s3 client", zap.Error(err))
		}
	} else {
		logger.Warn("AWS_REGION not set, avatar uploads disabled")
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := auth.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	categoryRepo := categories.NewRepository(pool)
	rsvpRepo := rsvp.NewRepository(pool)
	favoriteRepo := favorites.NewRepository(pool)
	organizerRepo := organizer.NewRepository(pool)
	supportRepo := support.NewRepository(pool)

	authHandler := auth.NewHandler(userRepo, jwtService, logger)
	userHandler := users.NewHandler(userRepo, s3, logger)
	eventHandler := events.NewHandler(eventRepo, userRepo, categoryRepo, jobQueue, logger)
	categoryHandler := categories.NewHandler(categoryRepo, logger)
	rsvpHandler := rsvp.NewHandler(rsvpRepo, eventRepo, logger)
	favoriteHandler := favorites.NewHandler(favoriteRepo, eventRepo, logger)
	organizerHandler := organizer.NewHandler(organizerRepo, userRepo, jobQueue, logger)
	supportHandler := support.NewHandler(supportRepo, userRepo, jobQueue, logger)

	router := buildRouter(cfg, logger, jwtService, userRepo,
		authHandler, userHandler, eventHandler, categoryHandler,
		rsvpHandler, favoriteHandler, organizerHandler, supportHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func buildRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtService *auth.JWTService,
	userRepo *auth.Repository,
	authHandler *auth.Handler,
	userHandler *users.Handler,
	eventHandler *events.Handler,
	categoryHandler *categories.Handler,
	rsvpHandler *rsvp.Handler,
	favoriteHandler *favorites.Handler,
	organizerHandler *organizer.Handler,
	supportHandler *support.Handler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/categories", categoryHandler.List)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.GET("/events/:id/rsvp/stats", rsvpHandler.Stats)

	authed := v1.Group("", middleware.JWT(jwtService), middleware.LoadUser(userRepo))

	authed.GET("/users/me", userHandler.Me)
	authed.PUT("/users/me", userHandler.UpdateMe)
	authed.POST("/users/me/avatar", userHandler.UploadAvatar)
	authed.POST("/users/me/avatar/presign", userHandler.PresignAvatar)
	authed.DELETE("/users/me/avatar", userHandler.DeleteAvatar)

	authed.GET("/events/my", eventHandler.ListMine)
	authed.GET("/events/:id/manage", eventHandler.GetForManage)

	authed.POST("/events/:id/rsvp", rsvpHandler.Set)
	authed.GET("/events/:id/rsvp/my", rsvpHandler.Get)
	authed.GET("/events/:id/rsvp/list", rsvpHandler.ListForEvent)
	authed.GET("/rsvp/my", rsvpHandler.ListMine)

	authed.POST("/favorites/:id", favoriteHandler.Add)
	authed.DELETE("/favorites/:id", favoriteHandler.Remove)
	authed.GET("/favorites/:id", favoriteHandler.Get)
	authed.GET("/favorites", favoriteHandler.ListMine)

	authed.POST("/organizer-requests", organizerHandler.Create)
	authed.GET("/organizer-requests/my", organizerHandler.ListMine)

	authed.POST("/support-tickets", supportHandler.Create)
	authed.GET("/support-tickets/my", supportHandler.ListMine)
	authed.GET("/support-tickets/:id", supportHandler.GetMine)

	organizers := authed.Group("", middleware.RequireRole(
		string(models.RoleOrganizer), string(models.RoleAdmin)))
	organizers.POST("/events", eventHandler.Create)
	organizers.PUT("/events/:id", eventHandler.Update)
	organizers.DELETE("/events/:id", eventHandler.Delete)
	organizers.POST("/events/:id/submit", eventHandler.Submit)
	organizers.POST("/events/:id/archive", eventHandler.Archive)

	admin := authed.Group("/admin", middleware.RequireRole(string(models.RoleAdmin)))
	admin.GET("/events", eventHandler.ListForModeration)
	admin.POST("/events/:id/publish", eventHandler.Publish)
	admin.POST("/events/:id/reject", eventHandler.Reject)
	admin.DELETE("/events/:id", eventHandler.Delete)
	admin.POST("/categories", categoryHandler.Create)
	admin.DELETE("/categories/:id", categoryHandler.Delete)
	admin.GET("/users", userHandler.List)
	admin.PATCH("/users/:id/role", userHandler.UpdateRole)
	admin.PATCH("/users/:id/block", userHandler.SetBlocked)
	admin.GET("/organizer-requests", organizerHandler.List)
	admin.POST("/organizer-requests/:id/approve", organizerHandler.Approve)
	admin.POST("/organizer-requests/:id/reject", organizerHandler.Reject)
	admin.GET("/support-tickets", supportHandler.List)
	admin.POST("/support-tickets/:id/reply", supportHandler.Reply)
	admin.POST("/support-tickets/:id/close", supportHandler.Close)
	admin.DELETE("/support-tickets/:id", supportHandler.Delete)

	return router
}
