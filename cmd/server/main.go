package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/api"
	"github.com/sovereignhq/assistant/internal/config"
	"github.com/sovereignhq/assistant/internal/inference"
	"github.com/sovereignhq/assistant/internal/state"
	"github.com/sovereignhq/assistant/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	st, err := state.New(cfg.DatabasePath, tokens.ForModel(cfg.OpenAIModel), logger)
	if err != nil {
		logger.Fatal("failed to initialize state manager",
			zap.Error(err),
			zap.String("dbPath", cfg.DatabasePath))
	}
	defer st.Close()

	window := state.NewContextWindow(st, cfg.ContextKeepCount)

	var engine inference.Engine
	switch cfg.InferenceBackend {
	case "openai":
		engine, err = inference.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Fatal("failed to initialize inference engine", zap.Error(err))
		}
	default:
		engine = inference.NewMock()
	}

	handler := api.NewHandler(st, window, engine, logger)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	logger.Info("starting server",
		zap.String("addr", cfg.ServerAddr),
		zap.String("inference_backend", cfg.InferenceBackend),
		zap.Int("context_keep_count", cfg.ContextKeepCount))
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
