package main

import (
	"github.com/xaenox/jarvis-bot/internal/assistant"
	"github.com/xaenox/jarvis-bot/internal/bot"
	"github.com/xaenox/jarvis-bot/internal/scheduler"
	"github.com/xaenox/jarvis-bot/internal/storage"
	"github.com/xaenox/jarvis-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize bot (also the reminder delivery transport)
	b, err := bot.New(cfg.Telegram.Token, cfg.Telegram.OwnerID, store, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Initialize reminder scheduler and function dispatcher
	sched := scheduler.New(logger)
	defer sched.Stop()

	dispatcher := assistant.NewDispatcher(store, sched, b.NotifyReminder, logger)
	memory := assistant.NewConversationMemory(assistant.MemoryLimit)

	// AI features are disabled entirely without an API key
	var orchestrator *assistant.Orchestrator
	if cfg.OpenRouter.APIKey != "" {
		orchestrator = assistant.NewOrchestrator(
			cfg.OpenRouter.APIKey,
			cfg.OpenRouter.BaseURL,
			cfg.OpenRouter.Model,
			cfg.OpenRouter.MaxTokens,
			cfg.OpenRouter.Temperature,
			store,
			dispatcher,
			memory,
			logger,
		)
		logger.Info("AI features enabled", zap.String("default_model", cfg.OpenRouter.Model))
	} else {
		logger.Warn("OPENROUTER_API_KEY not set, AI features disabled")
	}

	b.AttachAssistant(dispatcher, orchestrator, memory)

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
