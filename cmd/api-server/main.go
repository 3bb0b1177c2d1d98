package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"npcfinder/database"
	"npcfinder/internal/cache"
	"npcfinder/internal/config"
	"npcfinder/internal/events"
	"npcfinder/internal/http-api/handler"
	"npcfinder/internal/http-api/middleware"
	"npcfinder/internal/http-api/models"
	"npcfinder/internal/http-api/repository"
	"npcfinder/internal/http-api/service"
	"npcfinder/internal/prefetch"
	"npcfinder/internal/prefs"
	"npcfinder/internal/search"
	"npcfinder/internal/shared"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	rdb, err := newRedisClient(cfg)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	queryCache := cache.NewQueryCache(rdb, cfg.CacheTTL, logger)
	prefStore := prefs.NewStore(rdb, logger)
	bus := events.NewBus(0)
	defer bus.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	movieLibRepo := repository.NewLibraryRepository[models.MovieItem](db, "tmdb_id")
	bookLibRepo := repository.NewLibraryRepository[models.BookItem](db, "open_library_id")
	gameLibRepo := repository.NewLibraryRepository[models.GameItem](db, "rawg_id")
	musicLibRepo := repository.NewLibraryRepository[models.MusicItem](db, "itunes_id")

	movieRecRepo := repository.NewRecommendationRepository[models.MovieRecommendation](db)
	bookRecRepo := repository.NewRecommendationRepository[models.BookRecommendation](db)
	gameRecRepo := repository.NewRecommendationRepository[models.GameRecommendation](db)
	musicRecRepo := repository.NewRecommendationRepository[models.MusicRecommendation](db)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	friendService := service.NewFriendService(userRepo, connRepo, queryCache, bus)
	notifService := service.NewNotificationService(notifRepo, logger)

	libraries := service.LibraryRegistry{
		shared.KindMovies: service.NewMovieLibraryService(movieLibRepo, queryCache, prefStore),
		shared.KindBooks:  service.NewBookLibraryService(bookLibRepo, queryCache, prefStore),
		shared.KindGames:  service.NewGameLibraryService(gameLibRepo, queryCache, prefStore),
		shared.KindMusic:  service.NewMusicLibraryService(musicLibRepo, queryCache, prefStore),
	}
	recommendations := service.RecommendationRegistry{
		shared.KindMovies: service.NewMovieRecommendationService(movieRecRepo, connRepo, queryCache, bus),
		shared.KindBooks:  service.NewBookRecommendationService(bookRecRepo, connRepo, queryCache, bus),
		shared.KindGames:  service.NewGameRecommendationService(gameRecRepo, connRepo, queryCache, bus),
		shared.KindMusic:  service.NewMusicRecommendationService(musicRecRepo, connRepo, queryCache, bus),
	}
	summaryService := service.NewSummaryService(recommendations, connRepo)

	// Notification persister drains the event bus into notification rows.
	stopNotifications := notifService.Start(bus)
	defer stopNotifications()

	// Prefetch scheduler warms library caches on hover intent.
	scheduler := prefetch.NewScheduler(queryCache, cfg.PrefetchDebounce, cfg.PrefetchStaleness, logger)
	for kind, lib := range libraries {
		scheduler.Register(kind, lib.Warm)
	}
	defer scheduler.Close()

	searchRegistry := search.NewRegistry(cfg)

	// HTTP surface
	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(authService, cfg.AccessTokenTTL)
	authHandler.RegisterRoutes(api.Group("/auth"))

	authed := api.Group("/")
	authed.Use(middleware.AuthMiddleware(authService))

	handler.NewLibraryHandler(libraries).RegisterRoutes(authed.Group("/library"))
	handler.NewRecommendationHandler(recommendations, summaryService).RegisterRoutes(authed.Group("/recommendations"))
	handler.NewFriendHandler(friendService).RegisterRoutes(authed.Group("/friends"))
	handler.NewNotificationHandler(notifService).RegisterRoutes(authed.Group("/notifications"))
	handler.NewSearchHandler(searchRegistry, cfg.SearchLimit).RegisterRoutes(authed.Group("/search"))
	handler.NewPrefetchHandler(scheduler).RegisterRoutes(authed.Group("/prefetch"))
	handler.NewPrefsHandler(prefStore).RegisterRoutes(authed.Group("/prefs"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
