package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/auth"
	"github.com/pharmexam/examprep/internal/catalog"
	"github.com/pharmexam/examprep/internal/config"
	"github.com/pharmexam/examprep/internal/logging"
	"github.com/pharmexam/examprep/internal/quiz"
)

// Handlers groups the HTTP surfaces the server routes to.
type Handlers struct {
	Auth    *auth.HTTPHandlers
	Quiz    *quiz.HTTPHandler
	QuizWS  *quiz.WSHandler
	Catalog *catalog.HTTPHandler
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Auth endpoints
	mux.HandleFunc("POST /v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /v1/auth/refresh", h.Auth.RefreshToken)
	mux.HandleFunc("GET /v1/oauth/{provider}/start", h.Auth.OAuthStart)
	mux.HandleFunc("GET /v1/oauth/{provider}/callback", h.Auth.OAuthCallback)
	mux.Handle("GET /v1/users/me", auth.RequireAuth(http.HandlerFunc(h.Auth.GetMe)))

	// Quiz session endpoints
	requireAuth := func(fn http.HandlerFunc) http.Handler { return auth.RequireAuth(fn) }
	mux.Handle("POST /v1/quiz/sessions", requireAuth(h.Quiz.StartSession))
	mux.Handle("GET /v1/quiz/sessions/{id}", requireAuth(h.Quiz.GetSession))
	mux.Handle("POST /v1/quiz/sessions/{id}/select", requireAuth(h.Quiz.SelectAnswer))
	mux.Handle("POST /v1/quiz/sessions/{id}/check", requireAuth(h.Quiz.CheckAnswer))
	mux.Handle("POST /v1/quiz/sessions/{id}/next", requireAuth(h.Quiz.NextQuestion))
	mux.Handle("POST /v1/quiz/sessions/{id}/previous", requireAuth(h.Quiz.PreviousQuestion))
	mux.Handle("POST /v1/quiz/sessions/{id}/jump", requireAuth(h.Quiz.JumpToQuestion))
	mux.Handle("POST /v1/quiz/sessions/{id}/flag", requireAuth(h.Quiz.ToggleFlag))
	mux.Handle("POST /v1/quiz/sessions/{id}/restart", requireAuth(h.Quiz.RestartSession))
	mux.Handle("GET /v1/quiz/sessions/{id}/results", requireAuth(h.Quiz.GetResults))

	// WebSocket endpoint (token auth happens in the handler, not middleware)
	mux.HandleFunc("/ws/quiz", h.QuizWS.HandleWebSocket)

	// Catalog endpoints
	mux.HandleFunc("GET /v1/products", h.Catalog.GetProducts)
	mux.Handle("GET /v1/subscription", auth.RequireAuth(http.HandlerFunc(h.Catalog.GetSubscription)))

	var handler http.Handler = mux
	handler = auth.Middleware(authSvc, logger)(handler)
	handler = corsMiddleware(cfg.CORS)(handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
