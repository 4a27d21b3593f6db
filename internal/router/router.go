package router

import (
	"fmt"
	"time"

	"github.com/anonto42/reachout/backend/internal/handlers"
	"github.com/anonto42/reachout/backend/internal/middleware"
	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/repositories"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/anonto42/reachout/backend/pkg/config"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"github.com/labstack/echo/v4"
)

const unreadCountTTL = 10 * time.Minute

// SetupRoutes migrates the schema, wires repositories and services and
// registers every route. verifier may be nil when Firebase is not configured.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, verifier middleware.IDTokenVerifier) error {
	pgdb := db.Postgres
	if err := pgdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	zlog.Info("auto-migrations completed for all models")

	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	repos := repositories.NewRepositories(pgdb)

	unreadCache := repositories.NewNoopUnreadCounterCache()
	if db.Redis != nil {
		unreadCache = repositories.NewRedisUnreadCounterCache(db.Redis, unreadCountTTL)
	}

	var reporter services.FailureReporter
	if db.Mongo != nil {
		failures := repositories.NewMongoDeliveryFailureRepository(db.Mongo.Database(cfg.MongoDatabase))
		reporter = services.NewDeliveryFailureReporter(failures)
	}

	// --- Services ---
	resolver, err := services.NewRepositoryResolver(repos.Users, repos.Posts, repos.Comments, repos.Replies, repos.ReplyLikes)
	if err != nil {
		return err
	}
	notifications := services.NewNotificationService(pgdb, repos.Notifications, resolver, unreadCache, cfg.QueryTimeout)
	activity := services.NewActivityService(pgdb, repos, notifications, reporter, cfg.QueryTimeout)
	accounts := services.NewAccountService(pgdb, repos.Users, repos.Profiles, cfg.QueryTimeout)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(accounts, verifier, cfg.JWTSecret, cfg.JWTExpiry).RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	handlers.NewUserHandler(accounts).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(activity).RegisterFollowRoutes(api)
	handlers.NewMessageHandler(activity).RegisterMessageRoutes(api)
	handlers.NewPostHandler(activity).RegisterPostRoutes(api)
	handlers.NewCommentHandler(activity).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(activity).RegisterLikeRoutes(api)
	handlers.NewNotificationHandler(notifications).RegisterNotificationRoutes(api)

	zlog.Info("all routes configured")
	return nil
}
