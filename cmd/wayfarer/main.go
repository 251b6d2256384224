package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/wayfarer-travel/wayfarer/internal/accommodations"
	"github.com/wayfarer-travel/wayfarer/internal/app"
	"github.com/wayfarer-travel/wayfarer/internal/audit"
	"github.com/wayfarer-travel/wayfarer/internal/auth"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
	"github.com/wayfarer-travel/wayfarer/internal/platform/cache"
	"github.com/wayfarer-travel/wayfarer/internal/platform/db"
	"github.com/wayfarer-travel/wayfarer/internal/posts"
	"github.com/wayfarer-travel/wayfarer/internal/rbac"
	"github.com/wayfarer-travel/wayfarer/internal/sponsorships"
	"github.com/wayfarer-travel/wayfarer/internal/users"
	"github.com/wayfarer-travel/wayfarer/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	auditRecorder := audit.NewRecorder(pool)
	opts := crud.Options{
		Logger:   logger,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Events:   jobs.NewEmitter(asynqClient),
		Audit:    auditRecorder,
	}

	sponsorshipRepo := sponsorships.NewRepository(pool)
	sponsorshipService := sponsorships.NewService(sponsorshipRepo, opts)

	postRepo := posts.NewRepository(pool)
	postModel := cache.WrapModel[*posts.Post]("post", redisClient, postRepo, cfg.CacheTTL)
	postService := posts.NewService(postModel, sponsorshipRepo, opts)

	accommodationRepo := accommodations.NewRepository(pool)
	accommodationModel := cache.WrapModel[*accommodations.Accommodation]("accommodation", redisClient, accommodationRepo, cfg.CacheTTL)
	accommodationService := accommodations.NewService(accommodationModel, opts)

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo, jobs.NewMailer(asynqClient), opts)

	rbacService := rbac.NewService(pool)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authService := auth.NewService(userRepo)
	authMiddleware := auth.NewMiddleware(logger, tokens, rbacService)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       authMiddleware,
		RBACMiddleware:       rbacMiddleware,
		AuthHandler:          auth.NewHandler(logger, authService, tokens),
		PostsHandler:         posts.NewHandler(logger, postService),
		AccommodationHandler: accommodations.NewHandler(logger, accommodationService),
		UsersHandler:         users.NewHandler(logger, userService),
		SponsorshipHandler:   sponsorships.NewHandler(logger, sponsorshipService),
		RBACHandler:          rbac.NewHandler(logger, rbacService),
		AuditHandler:         audit.NewHandler(logger, auditRecorder),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
