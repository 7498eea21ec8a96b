package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"jobpost-engine/internal/config"
	"jobpost-engine/internal/domain"
	"jobpost-engine/internal/events"
	"jobpost-engine/internal/httpapi"
	"jobpost-engine/internal/logger"
	"jobpost-engine/internal/logstore"
	"jobpost-engine/internal/pipeline"
	"jobpost-engine/internal/scheduler"
	"jobpost-engine/internal/secrets"
	"jobpost-engine/internal/transport"
	"jobpost-engine/internal/wordpress"
)

func main() {
	log := logger.New(os.Getenv("JOBPOST_ENV"), os.Getenv("JOBPOST_LOG_LEVEL"))

	// Engine data dir: env wins, else local folder.
	dataDir := os.Getenv("JOBPOST_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config bootstrap failed")
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, warn := range vr.Warnings {
			log.Warn().Str("config", userCfgPath).Msg(warn)
		}
		if !vr.OK() {
			log.Error().Strs("errors", vr.Errors).Str("config", userCfgPath).Msg("config is invalid")
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatal().Err(err).Str("config", userCfgPath).Msg("config load failed")
	}
	cfgVal.Store(cfg)

	password, err := secrets.LogStorePassword(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("no log store password yet; set it via POST /api/secrets/logstore")
	}

	var cache *transport.Cache
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			cachePath = filepath.Join(dataDir, "responses.db")
		}
		cache, err = transport.OpenCache(cachePath, log)
		if err != nil {
			log.Fatal().Err(err).Str("path", cachePath).Msg("open response cache")
		}
		defer cache.Close()
	}

	client := transport.New(transport.Config{
		Username:   cfg.LogStore.Username,
		Password:   password,
		Timeout:    cfg.HTTPTimeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		ReqPerSec:  cfg.HTTP.ReqPerSec,
		Burst:      cfg.HTTP.Burst,
	}, cache, log)

	buildPipeline := func(cfg config.Config) *pipeline.Pipeline {
		fetcher := logstore.NewFetcher(client, cfg.LogStore.URL, log)
		enricher := wordpress.NewEnricher(client, wordpress.Config{
			BaseURL:   cfg.WordPress.BaseURL,
			Freshness: cfg.WordPressFreshness(),
		}, log)
		var allow []domain.ContentType
		for _, t := range cfg.Filters.TypesAllow {
			allow = append(allow, domain.ContentType(t))
		}
		return pipeline.New(fetcher, enricher, pipeline.Config{
			MaxConcurrent: cfg.Pipeline.MaxConcurrent,
			TypesAllow:    allow,
		}, log)
	}

	hub := events.NewHub()

	var refreshStatus atomic.Value
	refreshStatus.Store(httpapi.RefreshStatus{})

	deps := httpapi.Deps{
		CfgVal:        &cfgVal,
		UserCfgPath:   userCfgPath,
		LoadCfg:       loadCfg,
		BuildPipeline: buildPipeline,
		Hub:           hub,
		RefreshStatus: &refreshStatus,
		Log:           log,
	}
	mux := httpapi.NewMux(deps)

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover(log),
		httpapi.AccessLog(log),
		httpapi.Cors,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Refresh.Enabled {
		go scheduler.Every(ctx, cfg.RefreshInterval(), "refresh", log, func(ctx context.Context) error {
			cur := cfgVal.Load().(config.Config)
			posts, err := buildPipeline(cur).GetAllEnrichedPosts(ctx)
			if err != nil {
				hub.Publish(events.MakeEvent("", events.TypeRefreshFailed, 1, map[string]any{"error": err.Error()}))
				return err
			}
			hub.Publish(events.MakeEvent("", events.TypePostsRefreshed, 1, map[string]any{"count": len(posts)}))
			return nil
		})
	}

	addr := cfg.ListenAddr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("listen")
	}
	log.Info().Str("addr", addr).Str("config", userCfgPath).Msg("engine listening")

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.Serve(ln); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
