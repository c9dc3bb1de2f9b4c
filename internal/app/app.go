package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/auth"
	"github.com/pharmexam/examprep/internal/auth/jwt"
	"github.com/pharmexam/examprep/internal/catalog"
	"github.com/pharmexam/examprep/internal/config"
	"github.com/pharmexam/examprep/internal/logging"
	"github.com/pharmexam/examprep/internal/question"
	"github.com/pharmexam/examprep/internal/quiz"
	"github.com/pharmexam/examprep/internal/server"
	"github.com/pharmexam/examprep/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	sessionMgr    *quiz.Manager
	refreshWorker *question.RefreshWorker
	bgCancels     []context.CancelFunc
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// Auth
	authSvc := auth.NewService(auth.NewStore(pool), auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret:  []byte(cfg.Security.JWTSecret),
			RefreshSecret: []byte(cfg.Security.JWTSecret + "_refresh"),
			Issuer:        cfg.Name,
		},
	}, logger)

	var oauthSvc *auth.OAuthService
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		redirectURL := cfg.OAuth.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = fmt.Sprintf("http://%s/v1/oauth/google/callback", cfg.HTTPAddr)
		}
		oauthSvc = auth.NewOAuthService(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, redirectURL, logger)
		logger.Info().Msg("OAuth service initialized")
	} else {
		logger.Warn().Msg("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET)")
	}

	// Question bank with cache-through reads
	questionSvc := question.NewService(
		question.NewStore(pool),
		question.NewCache(redisClient, cfg.Quiz.CacheTTL),
	)

	var refreshWorker *question.RefreshWorker
	if cfg.Quiz.CacheRefreshInterval > 0 {
		refreshWorker = question.NewRefreshWorker(
			questionSvc,
			question.SetRequest{Limit: cfg.Quiz.QuestionLimit},
			cfg.Quiz.CacheRefreshInterval,
			cfg.Quiz.QuestionFetchTimeout,
			logger,
		)
	}

	// Quiz sessions
	sessionMgr := quiz.NewManager(questionSvc, quiz.ManagerOptions{
		FetchTimeout:  cfg.Quiz.QuestionFetchTimeout,
		QuestionLimit: cfg.Quiz.QuestionLimit,
		IdleTimeout:   cfg.Quiz.SessionIdleTimeout,
	}, logger)

	wsHub := ws.NewHub(logger)

	handlers := server.Handlers{
		Auth:    auth.NewHTTPHandlers(authSvc, oauthSvc, logger),
		Quiz:    quiz.NewHTTPHandler(sessionMgr, logger),
		QuizWS:  quiz.NewWSHandler(sessionMgr, wsHub, authSvc, logger),
		Catalog: catalog.NewHTTPHandler(catalog.NewStore(pool), logger),
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, handlers)

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          apiServer,
		sessionMgr:    sessionMgr,
		refreshWorker: refreshWorker,
		bgCancels:     make([]context.CancelFunc, 0, 2),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.sessionMgr.Run(bgCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("session janitor stopped")
		}
	}()

	if a.refreshWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.refreshWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("question cache refresher stopped")
			}
		}()
	}
}
