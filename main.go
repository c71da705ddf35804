package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/summora/config"
	"github.com/nijaru/summora/handlers/api"
	"github.com/nijaru/summora/logger"
	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/repository"
	"github.com/nijaru/summora/repository/memory"
	"github.com/nijaru/summora/repository/redis"
	"github.com/nijaru/summora/repository/sqlite"
	"github.com/nijaru/summora/services/cache"
	"github.com/nijaru/summora/services/provider"
	"github.com/nijaru/summora/services/summary"
	"github.com/nijaru/summora/services/transcript"
	"github.com/nijaru/summora/storage"
	"github.com/nijaru/summora/validation"
	"github.com/sirupsen/logrus"
)

// stores holds the persistence backends chosen by configuration along with
// their health checks and cleanup.
type stores struct {
	cache    repository.CacheStore
	settings repository.SettingsStore
	checks   map[string]api.HealthCheck
	closers  []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logrus.WithError(err).Warn("Failed to close store")
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	st, err := openStores(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	defer st.Close()

	registry, err := provider.NewDefaultRegistry(cfg.Providers, cfg.Summary.TruncateChars, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize providers")
	}

	validator := validation.NewValidator()

	summaryCache := cache.New(st.cache,
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithLogger(appLogger),
	)

	defaults := defaultSettings(cfg.Settings)
	summaryService := summary.NewService(
		summaryCache,
		st.settings,
		registry,
		validator,
		summary.Config{
			Defaults:       defaults,
			DedupeInFlight: cfg.Summary.DedupeInFlight,
		},
		appLogger,
	)

	extractor := transcript.NewExtractor(transcript.Options{
		CaptionFormat: cfg.Transcript.CaptionFormat,
		SettleDelay:   cfg.Transcript.SettleDelay,
		Logger:        appLogger,
	})
	loader := transcript.NewHTTPLoader(
		&http.Client{Timeout: cfg.Transcript.FetchTimeout},
		cfg.Transcript.UserAgent,
	)
	transcriptService := transcript.NewService(loader, extractor, validator)

	opts := []api.ServerOption{
		api.WithLogger(appLogger),
		api.WithServices(summaryService, transcriptService),
	}
	for name, check := range st.checks {
		opts = append(opts, api.WithHealthCheck(name, check))
	}
	server := api.NewServer(cfg, opts...)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.WithError(err).Error("Server shutdown error")
		}
	}()

	appLogger.WithFields(logrus.Fields{
		"version":  cfg.Version,
		"cache":    cfg.Cache.Backend,
		"settings": cfg.Settings.Backend,
		"provider": defaults.SelectedProvider(),
	}).Info("summora starting")

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		appLogger.WithError(err).Error("Server error")
	}
}

func defaultSettings(cfg config.SettingsConfig) models.Settings {
	return models.Settings{
		Provider:  models.ProviderName(cfg.DefaultProvider),
		OpenAIKey: cfg.OpenAIKey,
		ClaudeKey: cfg.ClaudeKey,
		GeminiKey: cfg.GeminiKey,
	}
}

func openStores(ctx context.Context, cfg *config.Config, appLogger *logrus.Logger) (*stores, error) {
	st := &stores{checks: make(map[string]api.HealthCheck)}

	// sqlite is opened at most once and shared by both stores.
	var db *sqlite.DB
	openSQLite := func() (*sqlite.DB, error) {
		if db != nil {
			return db, nil
		}
		dbCfg := sqlite.DefaultDBConfig()
		dbCfg.MaxConnections = cfg.Database.MaxConnections
		dbCfg.MaxIdleConnections = cfg.Database.MaxIdleConnections
		dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

		var err error
		db, err = sqlite.Open(ctx, cfg.Database.Path, dbCfg)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)
		st.checks["sqlite"] = db.Ping
		return db, nil
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := redis.NewCacheStore(ctx, cfg.Cache.RedisURL, appLogger)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, rc.Close)
		st.checks["redis"] = rc.Ping
		st.cache = rc
	case config.BackendMemory:
		st.cache = memory.NewCacheStore()
	default:
		sdb, err := openSQLite()
		if err != nil {
			st.Close()
			return nil, err
		}
		st.cache = sqlite.NewCacheStore(sdb)
	}

	switch cfg.Settings.Backend {
	case config.BackendS3:
		s3Store, err := storage.NewSettingsStore(ctx, storage.SpacesConfig{
			AccessKey: cfg.Settings.S3AccessKey,
			SecretKey: cfg.Settings.S3SecretKey,
			Region:    cfg.Settings.S3Region,
			Endpoint:  cfg.Settings.S3Endpoint,
			Bucket:    cfg.Settings.S3Bucket,
			ObjectKey: cfg.Settings.S3ObjectKey,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		st.settings = s3Store
	case config.BackendEnv, config.BackendMemory:
		st.settings = memory.NewSettingsStore(defaultSettings(cfg.Settings))
	default:
		sdb, err := openSQLite()
		if err != nil {
			st.Close()
			return nil, err
		}
		st.settings = sqlite.NewSettingsStore(sdb)
	}

	return st, nil
}
