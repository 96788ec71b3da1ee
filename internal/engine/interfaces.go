// Package engine wires the conversation pipeline: session context,
// intent classification, validation, and dispatch to domain handlers.
package engine

import (
	"context"
	"time"

	"github.com/Veraticus/majordomo/internal/model"
)

// Handler executes validated actions for one domain.
type Handler interface {
	// Apply performs a write action and returns the user confirmation.
	Apply(ctx context.Context, action *model.Action) (model.Confirmation, error)
	// Query performs a read action and returns the rendered result.
	Query(ctx context.Context, action *model.Action) (model.Confirmation, error)
}

// Validator turns a classifier draft into a validation outcome.
type Validator interface {
	Validate(ctx context.Context, draft model.ActionDraft, userID, messageID string, asOf time.Time) (model.Validation, error)
}
