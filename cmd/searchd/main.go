// Command searchd is the thin embedding host around the search core. It
// loads the catalog's current index directory into an in-process
// searchcore.Engine (the "(a) in-process direct call" plugin-loading option),
// serves queries over HTTP with a Redis-backed result cache, and optionally
// exposes the same SearchCapability over the IPC transport (option "(b)")
// when search.rpcAddr is configured.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/catalog"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcache"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcore"
	searchrpc "github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcore/rpc"
	apperrors "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/errors"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/config"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/health"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/logger"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/metrics"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/middleware"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/postgres"
	pkgredis "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/redis"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search daemon", "port", cfg.Server.Port)

	m := metrics.New()
	shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
	defer shutdownMetrics(context.Background())

	engine := searchcore.New()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, falling back to configured index dir", "error", err)
	} else {
		defer db.Close()
	}
	var cat *catalog.Catalog
	if db != nil {
		cat = catalog.New(db, m)
	}

	indexDir := cfg.Search.IndexDir
	if cat != nil {
		if dir, err := cat.GetCurrentIndexDir(context.Background()); err != nil {
			slog.Warn("reading current index dir from catalog failed", "error", err)
		} else if dir != "" {
			indexDir = dir
		}
	}
	if indexDir != "" {
		if err := loadIndex(engine, indexDir, m); err != nil {
			slog.Error("initial index load failed", "index_dir", indexDir, "error", err)
		}
	} else {
		slog.Warn("no index directory configured, searchd starting unloaded")
	}

	var redisClient *pkgredis.Client
	var queryCache *searchcache.QueryCache
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = searchcache.New(engine, redisClient, cfg.Redis, m)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	checker := buildHealthChecker(engine, redisClient, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Search.RPCAddr != "" {
		rpcServer := searchrpc.NewServer(engine.AsCapability())
		go func() {
			slog.Info("search rpc listening", "addr", cfg.Search.RPCAddr)
			if err := rpcServer.Serve(cfg.Search.RPCAddr); err != nil {
				slog.Error("search rpc server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			rpcServer.Stop()
		}()
	}

	h := newHTTPHandler(engine, queryCache, checker, cfg.Search.DefaultTop, cfg.Search.MaxTop, m)

	var chain http.Handler = h
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search daemon listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search daemon stopped")
}

func loadIndex(engine *searchcore.Engine, indexDir string, m *metrics.Metrics) error {
	start := time.Now()
	if err := engine.Load(indexDir); err != nil {
		m.BuildRunsTotal.WithLabelValues("load_failed").Inc()
		return err
	}
	m.LoadedIndexGen.Set(float64(time.Now().Unix()))
	slog.Info("index loaded", "index_dir", indexDir, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func buildHealthChecker(engine *searchcore.Engine, redisClient *pkgredis.Client, db *postgres.Client) *health.Checker {
	checker := health.NewChecker()
	checker.Register("search_core", func(ctx context.Context) health.ComponentHealth {
		if engine.Loaded() {
			return health.ComponentHealth{Status: health.StatusUp}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "no index loaded"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	return checker
}

type httpHandler struct {
	engine     *searchcore.Engine
	cache      *searchcache.QueryCache
	checker    *health.Checker
	defaultTop int
	maxTop     int
	metrics    *metrics.Metrics
}

func newHTTPHandler(engine *searchcore.Engine, cache *searchcache.QueryCache, checker *health.Checker, defaultTop, maxTop int, m *metrics.Metrics) http.Handler {
	h := &httpHandler{engine: engine, cache: cache, checker: checker, defaultTop: defaultTop, maxTop: maxTop, metrics: m}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/search", h.search)
	mux.HandleFunc("POST /v1/index/load", h.loadIndex)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	return mux
}

func (h *httpHandler) search(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "searchd.search", middleware.RequestIDFromContext(r.Context()))
	defer span.End()
	defer span.Log()

	query := r.URL.Query().Get("q")
	top := h.defaultTop
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			top = n
		}
	}
	if top > h.maxTop {
		top = h.maxTop
	}
	span.SetAttr("query_len", len(query))
	span.SetAttr("top", top)

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "enabled"
	}
	searchStart := time.Now()
	var hits []searchcore.Hit
	var err error
	if h.cache != nil {
		hits, err = h.cache.Search(ctx, query, top)
	} else {
		hits, err = h.engine.Search(query, top)
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(searchStart).Seconds())
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	if len(hits) == 0 {
		h.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	} else {
		h.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	h.metrics.SearchResultsCount.WithLabelValues().Observe(float64(len(hits)))
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (h *httpHandler) loadIndex(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IndexDir string `json:"index_dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IndexDir == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index_dir is required"})
		return
	}
	if err := loadIndex(h.engine, body.IndexDir, h.metrics); err != nil {
		writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
		return
	}
	if h.cache != nil {
		_ = h.cache.Invalidate(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "index_dir": body.IndexDir})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
