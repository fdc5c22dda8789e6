package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"resultados/internal/domain/auth"
	"resultados/internal/domain/results"
	"resultados/internal/domain/session"
	"resultados/internal/platform/config"
	"resultados/internal/platform/db"
	"resultados/internal/platform/jobs"
	"resultados/internal/platform/logging"
	"resultados/internal/platform/metrics"
	authhandler "resultados/internal/transport/http/handlers/auth"
	datasethandler "resultados/internal/transport/http/handlers/dataset"
	resultshandler "resultados/internal/transport/http/handlers/results"
	sessionshandler "resultados/internal/transport/http/handlers/sessions"
	"resultados/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Router   http.Handler
	Results  *results.Service
	Sessions *session.Manager
	Jobs     *jobs.Service
	Metrics  *metrics.Collector

	cancel context.CancelFunc
}

// New wires the application. The first dataset load is queued as a
// dataset_reload job, so the service starts in the loading state and
// /readyz reports 503 until it finishes.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	collector := metrics.New()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	svc := results.NewService(datasetSource(cfg, pool), collector)
	sessions := session.NewManager(cfg.ClearedNoticeTTL, collector)
	jobsSvc := jobs.New(collector)

	datasetHandler := datasethandler.NewHandler(svc, jobsSvc, cfg.AuthEnabled())
	jobsSvc.Every(jobs.JobDatasetReload, cfg.ReloadInterval, datasetHandler.ReloadJob())
	jobsSvc.Every(jobs.JobSessionSweep, cfg.SessionSweepInterval, func(context.Context) (any, error) {
		return map[string]int{"expired": sessions.Sweep(cfg.SessionIdleTTL)}, nil
	})

	jobsCtx, cancel := context.WithCancel(context.Background())
	jobsSvc.Start(jobsCtx)
	jobsSvc.Enqueue(jobs.JobDatasetReload, datasetHandler.ReloadJob())

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID", "X-Total-Count"},
	}).Handler)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if status := svc.Snapshot().Status; status != results.StatusLoaded {
			http.Error(w, "dataset "+string(status), http.StatusServiceUnavailable)
			return
		}
		if pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(auth.Authenticator{
			Secret:       cfg.JWTSecret,
			Username:     cfg.AuthUser,
			PasswordHash: cfg.AuthPasswordHash,
			TTL:          cfg.TokenTTL,
		})
		authHandler.RegisterRoutes(r)

		datasetHandler.RegisterRoutes(r)

		resultsHandler := resultshandler.NewHandler(svc, collector)
		resultsHandler.RegisterRoutes(r)

		sessionsHandler := sessionshandler.NewHandler(sessions, svc, collector)
		sessionsHandler.RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Results:  svc,
		Sessions: sessions,
		Jobs:     jobsSvc,
		Metrics:  collector,
		cancel:   cancel,
	}, nil
}

// datasetSource picks Postgres, then a remote CSV, then the local file.
func datasetSource(cfg config.Config, pool *pgxpool.Pool) results.Source {
	switch {
	case pool != nil:
		return results.NewStore(pool)
	case cfg.DatasetURL != "":
		return results.HTTPSource{URL: cfg.DatasetURL, Client: &http.Client{Timeout: cfg.DatasetTimeout}}
	default:
		return results.FileSource{Path: cfg.DatasetPath}
	}
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.Environment)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("resultados server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
