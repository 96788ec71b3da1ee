package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/majordomo/internal/config"
	"github.com/Veraticus/majordomo/internal/engine"
	"github.com/Veraticus/majordomo/internal/llm"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/report"
	"github.com/Veraticus/majordomo/internal/session"
	"github.com/Veraticus/majordomo/internal/storage"
	"github.com/Veraticus/majordomo/internal/task"
	"github.com/Veraticus/majordomo/internal/validate"
)

// loadConfig builds the validated application config from viper state.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// openStorage opens the database and applies pending migrations.
func openStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}
	return store, nil
}

// buildClassifier creates the LLM-backed intent classifier.
func buildClassifier(cfg config.Config) (*llm.IntentClassifier, error) {
	client, err := llm.NewClient(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewIntentClassifier(client, cfg.Retry), nil
}

// buildEngine assembles the full message pipeline over an open store.
func buildEngine(cfg config.Config, store *storage.SQLiteStorage) (*engine.Engine, *report.Aggregator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}

	aggregator := report.NewAggregator(store, loc)

	dispatcher := engine.NewDispatcher(cfg.Retry)
	dispatcher.Register(model.DomainAccounting, task.NewAccountingHandler(store))
	dispatcher.Register(model.DomainSubscription, task.NewSubscriptionHandler(store))
	dispatcher.Register(model.DomainTodo, task.NewTodoHandler(store))
	dispatcher.Register(model.DomainReport, report.NewHandler(aggregator))

	sessions := session.NewStore(cfg.Session.MaxTurns, cfg.Session.IdleTimeout)
	validator := validate.New(store, loc, cfg.Currency)

	return engine.New(sessions, classifier, validator, dispatcher), aggregator, nil
}
