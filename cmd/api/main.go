package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"loginweb/internal/config"
	"loginweb/internal/domain"
	apihttp "loginweb/internal/http"
	"loginweb/internal/repository"
	"loginweb/internal/service"
	"loginweb/internal/store"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	usersTable := store.NewTable[domain.User](cfg.UsersFile)
	onlineTable := store.NewLenientTable[int64](cfg.OnlineFile)
	userRepo := repository.NewFileUserRepository(usersTable)
	presenceRepo := repository.NewFilePresenceRepository(onlineTable)

	var (
		sessionStore service.SessionStore
		loginLimiter service.LoginRateLimiter
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(
				redisClient,
				time.Duration(cfg.LoginWindowMinutes)*time.Minute,
				cfg.LoginMaxAttempts,
			)
		}
		cancel()
	}
	if loginLimiter == nil {
		loginLimiter = service.NewLoginRateLimiter(
			time.Duration(cfg.LoginWindowMinutes)*time.Minute,
			cfg.LoginMaxAttempts,
		)
	}

	userSvc := service.NewUserService(logger, userRepo)
	presenceSvc := service.NewPresenceService(
		logger,
		presenceRepo,
		time.Duration(cfg.OnlineTimeoutSeconds)*time.Second,
	)
	sessionSvc := service.NewSessionServiceWithStore(
		cfg.SessionSecret,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
		sessionStore,
	)
	avatarSvc := service.NewAvatarService(
		logger,
		userSvc,
		cfg.UploadDir,
		"/static/uploads/",
		time.Duration(cfg.AvatarFetchTimeoutSeconds)*time.Second,
	)

	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	} else {
		logger.Warn("google sign-in not configured")
	}

	gate := apihttp.NewSessionGate(logger, sessionSvc, presenceSvc)
	authHandler := apihttp.NewAuthHandler(logger, userSvc, sessionSvc, presenceSvc, loginLimiter)
	googleHandler := apihttp.NewGoogleHandler(logger, userSvc, sessionSvc, presenceSvc, avatarSvc, oauthCfg)
	profileHandler := apihttp.NewProfileHandler(logger, userSvc, avatarSvc)
	onlineHandler := apihttp.NewOnlineHandler(logger, presenceSvc)

	router := apihttp.NewRouter(
		logger,
		gate,
		authHandler,
		googleHandler,
		profileHandler,
		onlineHandler,
		cfg.TemplatesGlob,
		cfg.StaticDir,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
