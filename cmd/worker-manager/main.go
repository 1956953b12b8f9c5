// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"defi-nlu/internal/common/camunda"
	"defi-nlu/internal/common/config"
	"defi-nlu/internal/common/database"
	"defi-nlu/internal/common/logger"
	"defi-nlu/internal/common/observability"
	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/service"
	"defi-nlu/internal/nlu/store"
	"defi-nlu/pkg/registry"

	llm "defi-nlu/internal/workers/ai-conversation/llm-synthesis"
	pui "defi-nlu/internal/workers/ai-conversation/parse-user-intent"
	rcc "defi-nlu/internal/workers/ai-conversation/route-chat-command"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker manager:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("observability init failed: %w", err)
	}

	// --- Optional stores ---
	sources := corpus.Sources{corpus.NewGenerator(corpus.Options{
		TypoRate: cfg.NLU.TypoRate,
		Seed:     cfg.NLU.Seed,
	})}
	var options []service.Option

	if cfg.Database.Redis.Enabled() {
		var rdb *database.RedisClient
		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "Redis connection", log, func(ctx context.Context) error {
			var err error
			if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			return rdb.Ping(ctx)
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		options = append(options, service.WithStore(store.NewRedisSnapshotStore(rdb, cfg.NLU.SnapshotKey, 0)))
		zapLog.Info("Redis connected successfully", zap.String("snapshotKey", cfg.NLU.SnapshotKey))
	}

	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "PostgreSQL connection", log, func(ctx context.Context) error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			return pg.Ping(ctx)
		})
		if err != nil {
			return err
		}
		defer pg.Close()

		extra, err := store.NewPostgresCorpus(pg, cfg.NLU.CorpusTable, log)
		if err != nil {
			return err
		}
		sources = append(sources, extra)
		zapLog.Info("PostgreSQL connected successfully", zap.String("corpusTable", cfg.NLU.CorpusTable))
	}

	// --- NLU service ---
	svc := service.New(sources, log, service.OptionsFromConfig(cfg.NLU), options...)
	go func() {
		if err := svc.Initialize(ctx); err != nil {
			log.WithError(err).Error("Initial model training failed; retrying on first request", nil)
		}
	}()

	// --- Zeebe workers ---
	var workers *camunda.Workers
	if cfg.Camunda.BrokerAddress != "" && anyWorkerEnabled(cfg) {
		var zeebe *camunda.Client
		err = camunda.Retry(ctx, camunda.DefaultRetryConfig, "Zeebe client initialization", log, func(ctx context.Context) error {
			var err error
			zeebe, err = camunda.Connect(ctx, cfg.Camunda)
			return err
		})
		if err != nil {
			return err
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		workers = camunda.NewWorkers(zeebe.Zeebe(), log)
		registerWorkers(cfg, workers, svc, log)
		checkRegistry(cfg, log)
		zapLog.Info("Workers registered", zap.Int("count", workers.Count()))
	}

	// --- HTTP API, health & metrics ---
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newAPI(svc, log).routes(obs),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping workers...")
	case err := <-serverErr:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if workers != nil {
		workers.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping meter provider", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
	return nil
}

func anyWorkerEnabled(cfg *config.Config) bool {
	for _, taskType := range []string{pui.TaskType, rcc.TaskType, llm.TaskType} {
		if config.IsWorkerEnabled(cfg, taskType) {
			return true
		}
	}
	return false
}

func registerWorkers(cfg *config.Config, workers *camunda.Workers, svc *service.Service, log logger.Logger) {
	if wcfg := config.GetWorkerConfig(cfg, pui.TaskType); wcfg.Enabled {
		handler := pui.NewHandler(
			&pui.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			svc,
			&parseUserIntentLoggerAdapter{log},
		)
		workers.Start(pui.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, rcc.TaskType); wcfg.Enabled {
		handler := rcc.NewHandler(
			&rcc.Config{
				ConfidenceThreshold: cfg.NLU.ConfidenceThreshold,
				Timeout:             config.GetDuration(wcfg.Timeout),
			},
			&routeChatCommandLoggerAdapter{log},
		)
		workers.Start(rcc.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, llm.TaskType); wcfg.Enabled {
		handler := llm.NewHandler(
			&llm.Config{
				GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
				APIKey:       cfg.APIs.GenAI.APIKey,
				Timeout:      config.GetDuration(cfg.APIs.GenAI.Timeout),
				MaxRetries:   wcfg.MaxRetries,
				MaxTokens:    500,
				Temperature:  0.7,
			},
			&llmSynthesisLoggerAdapter{log},
		)
		workers.Start(llm.TaskType, wcfg, handler.Handle)
	}
}

// checkRegistry warns about enabled workers the activity registry does not
// document, so modellers are not left guessing a job's variable contract.
func checkRegistry(cfg *config.Config, log logger.Logger) {
	if cfg.App.RegistryPath == "" {
		return
	}
	reg, err := registry.LoadRegistry(cfg.App.RegistryPath)
	if err != nil {
		log.WithError(err).Warn("Activity registry unavailable", map[string]interface{}{
			"path": cfg.App.RegistryPath,
		})
		return
	}
	for _, taskType := range []string{pui.TaskType, rcc.TaskType, llm.TaskType} {
		if !config.IsWorkerEnabled(cfg, taskType) {
			continue
		}
		activity, ok := reg.Find(taskType)
		if !ok {
			log.Warn("Worker missing from activity registry", map[string]interface{}{"taskType": taskType})
			continue
		}
		log.Debug("Worker documented in activity registry", map[string]interface{}{
			"taskType": taskType,
			"version":  activity.Version,
			"status":   activity.ImplementationStatus,
		})
	}
}

// Logger adapters for workers that have their own Logger interfaces
type parseUserIntentLoggerAdapter struct {
	logger.Logger
}

func (a *parseUserIntentLoggerAdapter) With(fields map[string]interface{}) pui.Logger {
	return &parseUserIntentLoggerAdapter{a.Logger.With(fields)}
}

type routeChatCommandLoggerAdapter struct {
	logger.Logger
}

func (a *routeChatCommandLoggerAdapter) With(fields map[string]interface{}) rcc.Logger {
	return &routeChatCommandLoggerAdapter{a.Logger.With(fields)}
}

type llmSynthesisLoggerAdapter struct {
	logger.Logger
}

func (a *llmSynthesisLoggerAdapter) With(fields map[string]interface{}) llm.Logger {
	return &llmSynthesisLoggerAdapter{a.Logger.With(fields)}
}
