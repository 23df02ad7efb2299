package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mominaamjad/pixel-notes/internal/auth"
	"github.com/mominaamjad/pixel-notes/internal/config"
	"github.com/mominaamjad/pixel-notes/internal/core"
	"github.com/mominaamjad/pixel-notes/internal/export"
	"github.com/mominaamjad/pixel-notes/internal/health"
	"github.com/mominaamjad/pixel-notes/internal/mail"
	"github.com/mominaamjad/pixel-notes/internal/middleware"
	"github.com/mominaamjad/pixel-notes/internal/migrations"
	"github.com/mominaamjad/pixel-notes/internal/note"
	"github.com/mominaamjad/pixel-notes/internal/ops"
	"github.com/mominaamjad/pixel-notes/internal/server"
	"github.com/mominaamjad/pixel-notes/internal/user"
)

const drainDelay = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)
	core.SetDebugErrors(!cfg.IsProduction())

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := migrations.Up(ctx, db.DB.DB); err != nil {
		return err
	}
	logger.Info("migrations applied")

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := setupJWT(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	mailer := setupMailer(cfg, logger)
	validate := validator.New()

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)

	authSvc := auth.NewService(
		userSvc,
		jwtManager,
		mailer,
		cfg.App.FrontendURL,
		logger,
	)
	authHandler := auth.NewHandler(authSvc, validate)

	noteRepo := note.NewRepository(db.DB)
	noteSvc := note.NewService(noteRepo)
	noteHandler := note.NewHandler(noteSvc, export.NewFormatter(), validate)

	healthHandler := health.NewHandler()
	healthHandler.AddDependency("database", db)
	healthHandler.AddDependency("redis", redis)

	opsHandler := ops.NewHandler(ops.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Store:      ops.NewStatsStore(db.DB),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager, userSvc)
	authRateLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.AuthRequests,
				cfg.RateLimit.AuthBurst,
			),
			FailOpen: true,
			Prefix:   "auth",
		},
	)

	router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authRateLimiter.Handler)
				authHandler.RegisterPublicRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(authenticator)
				authHandler.RegisterProtectedRoutes(r)
			})
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(authenticator)
			noteHandler.RegisterRoutes(r)
		})

		opsHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// setupJWT loads the signing key pair, generating one on first run in
// non-production environments.
func setupJWT(cfg *config.Config, logger *slog.Logger) (*auth.JWTManager, error) {
	_, err := os.Stat(cfg.JWT.PrivateKeyPath)
	if errors.Is(err, fs.ErrNotExist) && !cfg.IsProduction() {
		logger.Warn("JWT key pair not found, generating",
			"private_key", cfg.JWT.PrivateKeyPath,
		)
		if genErr := auth.GenerateKeyPair(
			cfg.JWT.PrivateKeyPath,
			cfg.JWT.PublicKeyPath,
		); genErr != nil {
			return nil, genErr
		}
	}

	return auth.NewJWTManager(cfg.JWT)
}

func setupMailer(cfg *config.Config, logger *slog.Logger) mail.Sender {
	if cfg.SMTP.Enabled {
		return mail.NewSMTPSender(cfg.SMTP)
	}

	logger.Warn("SMTP disabled, emails will be logged instead of delivered")
	return mail.NewLogSender(logger)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
