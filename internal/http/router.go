package http

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/geocoder89/quizvote/internal/accounts"
	"github.com/geocoder89/quizvote/internal/auth"
	"github.com/geocoder89/quizvote/internal/cache"
	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/http/handlers"
	"github.com/geocoder89/quizvote/internal/http/middlewares"
	"github.com/geocoder89/quizvote/internal/observability"
	"github.com/geocoder89/quizvote/internal/quiz"
	"github.com/geocoder89/quizvote/internal/voting"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the stores and shared infrastructure the router wires into handlers.
// Prom, Gatherer, ResultsCache and ReadyChecks are optional.
type Deps struct {
	Users     accounts.UserStore
	Questions quiz.Store
	Votes     voting.Store

	ResultsCache cache.ResultsCache
	Prom         *observability.Prom
	Gatherer     prometheus.Gatherer
	ReadyChecks  map[string]handlers.Check
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if cfg.OTELEnabled {
		r.Use(otelgin.Middleware("quizvote-api"))
	}
	r.Use(middlewares.RequestLogger(log, 500*time.Millisecond))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	if deps.Prom != nil {
		r.Use(deps.Prom.Middleware())
	}

	// health
	health := handlers.NewHealthHandler(deps.ReadyChecks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// services
	tokens := auth.NewManager(cfg.TokenSecret)
	accountService := accounts.NewService(deps.Users, tokens, log)
	catalog := quiz.NewCatalog(deps.Questions)

	ledgerOpts := []voting.LedgerOption{}
	if deps.Prom != nil {
		ledgerOpts = append(ledgerOpts, voting.WithMetrics(deps.Prom))
	}
	if deps.ResultsCache != nil {
		rc := deps.ResultsCache
		ledgerOpts = append(ledgerOpts, voting.OnRecorded(func(ctx context.Context) {
			if err := rc.Invalidate(ctx); err != nil {
				log.WarnContext(ctx, "results_cache_invalidate_failed", "err", err)
			}
		}))
	}
	ledger := voting.NewLedger(deps.Votes, log, ledgerOpts...)
	aggregator := voting.NewAggregator(deps.Votes)

	var cacheMetrics handlers.CacheMetrics
	if deps.Prom != nil {
		cacheMetrics = deps.Prom
	}

	// handlers
	authHandler := handlers.NewAuthHandler(accountService)
	questionsHandler := handlers.NewQuestionsHandler(catalog)
	votesHandler := handlers.NewVotesHandler(ledger)
	resultsHandler := handlers.NewResultsHandler(aggregator, deps.ResultsCache, cacheMetrics, log)

	api := r.Group("/api")
	{
		api.POST("/add-user", authHandler.AddUser)
		api.POST("/login", authHandler.Login)

		api.POST("/post-four-option-question", questionsHandler.PostFourOption)
		api.POST("/post-two-option-question", questionsHandler.PostTwoOption)
		api.GET("/get-questions", questionsHandler.GetQuestions)

		api.POST("/post-answer", middlewares.RequireAuth(tokens), votesHandler.PostAnswer)
		api.GET("/get-result", resultsHandler.GetResult)
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondFailure(ctx, nethttp.StatusNotFound, "route not found", nil)
	})

	return r
}
