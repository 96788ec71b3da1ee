// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/majordomo/internal/model"
)

// TodoFilter defines filtering options for todo queries.
type TodoFilter struct {
	DueOn    *time.Time
	Status   model.TodoStatus
	Priority model.TodoPriority
}

// Storage defines the contract for the document-database collaborator.
// Implementations must be treated as fallible and slow; every call takes a
// context and may fail transiently.
type Storage interface {
	// Accounting records
	SaveRecord(ctx context.Context, record *model.AccountingRecord) error
	GetRecordsByPeriod(ctx context.Context, userID string, start, end time.Time) ([]model.AccountingRecord, error)

	// Subscriptions
	SaveSubscription(ctx context.Context, sub *model.Subscription) error
	UpdateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscriptionByID(ctx context.Context, id string) (*model.Subscription, error)
	GetSubscriptions(ctx context.Context, userID string, status model.SubscriptionStatus) ([]model.Subscription, error)
	FindSubscriptionsByName(ctx context.Context, userID, name string) ([]model.Subscription, error)

	// Todo items
	SaveTodo(ctx context.Context, todo *model.TodoItem) error
	UpdateTodo(ctx context.Context, todo *model.TodoItem) error
	GetTodoByID(ctx context.Context, id string) (*model.TodoItem, error)
	GetTodos(ctx context.Context, userID string, filter TodoFilter) ([]model.TodoItem, error)
	FindTodosByTitle(ctx context.Context, userID, title string) ([]model.TodoItem, error)

	// Users known to the store (distinct record owners), for scheduled reports.
	ListUsers(ctx context.Context) ([]string, error)

	// Database management
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Transport delivers text to and receives messages from one chat platform.
// Adapters vary by capability, not hierarchy; they register under their
// platform name.
type Transport interface {
	Name() string
	Send(ctx context.Context, userID, text string) error
	// Poll blocks, delivering inbound messages to handle until ctx is done.
	Poll(ctx context.Context, handle func(model.InboundMessage)) error
}

// Classifier turns an utterance plus conversational context into an
// action draft.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (model.ActionDraft, error)
}

// ClassifyRequest carries everything the classifier needs for one turn.
type ClassifyRequest struct {
	Utterance       string
	RecentTurns     []string
	PendingQuestion string
	PendingDraft    *model.ActionDraft
	AsOf            time.Time
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
