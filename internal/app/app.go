package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hornethelper/internal/cache"
	"hornethelper/internal/config"
	"hornethelper/internal/events"
	"hornethelper/internal/feed"
	"hornethelper/internal/repository"
	"hornethelper/internal/service"
	"hornethelper/internal/transport/rest"
	"hornethelper/internal/transport/ws"
)

// App holds the wired process: connections, services and the HTTP handler
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Mongo     *mongo.Client
	Redis     *redis.Client
	Publisher events.EventPublisher
	WSHub     *ws.Hub

	SessionRepo  repository.SessionRepo
	CalendarRepo repository.CalendarRepo
	MessageRepo  repository.MessageRepo
	UserRepo     repository.UserRepo
	SessionCache cache.SessionCache

	AuthService           *service.AuthService
	UserService           *service.UserService
	CalendarService       *service.CalendarService
	SessionService        *service.SessionService
	ChatService           *service.ChatService
	RecommendationService *service.RecommendationService

	Router http.Handler
}

// New connects to the stores and wires every service
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.Mongo = mongoClient

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("Connected to MongoDB", "database", cfg.MongoDatabase)

	a.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := a.Redis.Ping(ctx).Result(); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("Connected to Redis", "addr", cfg.RedisAddr)

	a.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		pub, err := events.NewNatsPublisher(cfg.NATSURL)
		if err != nil {
			logger.Warn("NATS unavailable, session events will not be published", "url", cfg.NATSURL, "error", err)
		} else {
			a.Publisher = pub
			logger.Info("Connected to NATS", "url", cfg.NATSURL)
		}
	}

	db := mongoClient.Database(cfg.MongoDatabase)

	// Initialize repositories
	a.SessionRepo = repository.NewSessionRepo(db)
	a.CalendarRepo = repository.NewCalendarRepo(db)
	a.MessageRepo = repository.NewMessageRepo(db)
	a.UserRepo = repository.NewUserRepo(db)

	// Initialize caches
	a.SessionCache = cache.NewSessionCache(a.Redis)
	videoCache := cache.NewRecommendationCache(a.Redis, cfg.Recommender.VideoCacheTTL)

	// Initialize services
	a.AuthService = service.NewAuthService(cfg.JWTSecret, cfg.SigninSecret, cfg.TokenTTL)
	a.UserService = service.NewUserService(a.UserRepo, a.AuthService)
	a.CalendarService = service.NewCalendarService(a.CalendarRepo)
	a.SessionService = service.NewSessionService(a.SessionRepo, a.MessageRepo, a.CalendarService, a.SessionCache, a.Publisher)
	a.RecommendationService = service.NewRecommendationService(cfg.Recommender, videoCache)
	a.ChatService = service.NewChatService(a.MessageRepo, a.SessionService, a.RecommendationService)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.WSHub = ws.NewHub()
	a.SessionService.SetBroadcaster(a.WSHub)
	a.ChatService.SetBroadcaster(a.WSHub)

	a.Router = rest.NewRouter(&rest.Container{
		AuthService:           a.AuthService,
		UserService:           a.UserService,
		SessionService:        a.SessionService,
		CalendarService:       a.CalendarService,
		ChatService:           a.ChatService,
		RecommendationService: a.RecommendationService,
		WSHub:                 a.WSHub,
		Logger:                logger,
		AllowedOrigins:        cfg.CORSAllowedOrigins,
	})

	return a, nil
}

// RunFeeds keeps the session lists live until ctx ends
func (a *App) RunFeeds(ctx context.Context) {
	a.SessionService.Run(ctx, feed.Options{
		PollInterval: a.Config.FeedPollInterval,
		Logger:       a.Logger.With("component", "feed"),
	})
}

// Close releases every connection. Safe on a partially built App.
func (a *App) Close(ctx context.Context) {
	if a.WSHub != nil {
		a.WSHub.Stop()
	}
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Logger.Warn("Failed to disconnect MongoDB", "error", err)
		}
	}
}
