package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"leavemind/internal/domain/balance"
	"leavemind/internal/domain/engine"
	"leavemind/internal/domain/escalation"
	"leavemind/internal/domain/notify"
	"leavemind/internal/domain/policy"
	"leavemind/internal/domain/team"
	"leavemind/internal/platform/config"
	"leavemind/internal/platform/db"
	"leavemind/internal/platform/email"
	"leavemind/internal/platform/jobs"
	"leavemind/internal/platform/metrics"
	"leavemind/internal/transport/http/api"
	decisionhandler "leavemind/internal/transport/http/handlers/decision"
	escalationhandler "leavemind/internal/transport/http/handlers/escalation"
	notificationshandler "leavemind/internal/transport/http/handlers/notifications"
	policyhandler "leavemind/internal/transport/http/handlers/policy"
	"leavemind/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, "Acme Demo"); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()
	resolver := policy.NewResolver(policy.NewStore(pool), cfg.PolicyCacheTTL)
	balances := balance.NewCalculator(balance.NewStore(pool))
	teamReader := team.NewReader(team.NewStore(pool))
	notifier := notify.New(notify.NewStore(pool), email.New(cfg), cfg.EmailFrom)

	var oracle engine.OracleClient
	if cfg.OracleURL != "" {
		oracle = engine.NewHTTPOracle(cfg.OracleURL, cfg.OracleTimeout)
	}
	eng := engine.NewService(resolver, balances, teamReader, engine.NewStore(pool), oracle, notifier)

	scheduler := escalation.NewScheduler(escalation.NewStore(pool), notifier)
	background := jobs.New(pool, cfg, scheduler)
	background.Start(ctx)

	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Org-ID", "X-Employee-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.Metrics(collector))

		decisions := decisionhandler.New(eng, collector)
		r.Post("/decisions/evaluate", decisions.Evaluate)

		policies := policyhandler.New(resolver)
		r.Get("/policy", policies.Get)
		r.Get("/policy/rules", policies.Rules)
		r.Post("/policy/cache/clear", policies.ClearCache)

		escalations := escalationhandler.New(scheduler, background, collector)
		r.Get("/escalations", escalations.List)
		r.Post("/escalations/scan", escalations.Scan)

		events := notificationshandler.New(notifier)
		r.Get("/notifications", events.List)

		if cfg.MetricsEnabled {
			r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		}
	})

	log.Printf("leavemind server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
