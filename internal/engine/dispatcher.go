package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// Dispatcher routes complete actions to the handler registered for their
// domain. Each call performs at most one write. Retries happen inside the
// storage layer's transient failures, never by replaying a completed write.
type Dispatcher struct {
	handlers map[model.Domain]Handler
	retry    service.RetryOptions
}

// NewDispatcher creates an empty dispatcher with the given retry policy
// for transient storage failures.
func NewDispatcher(retry service.RetryOptions) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[model.Domain]Handler),
		retry:    retry,
	}
}

// Register binds a handler to a domain. Later registrations replace
// earlier ones.
func (d *Dispatcher) Register(domain model.Domain, handler Handler) {
	d.handlers[domain] = handler
}

// Dispatch executes one complete action. Both queries and writes retry on
// transient failures; only a failed write re-enters the loop, so a
// completed write is never replayed. Exhausted retries surface as
// ErrStorageUnavailable for the user to try again.
func (d *Dispatcher) Dispatch(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	handler, ok := d.handlers[action.Type.Domain()]
	if !ok {
		return model.Confirmation{}, fmt.Errorf("no handler registered for domain %s", action.Type.Domain())
	}

	slog.Debug("dispatching action",
		"action", action.Type,
		"user_id", action.UserID,
		"message_id", action.MessageID,
	)

	execute := handler.Apply
	if action.Type.IsQuery() {
		execute = handler.Query
	}

	var conf model.Confirmation
	err := common.WithRetry(ctx, func() error {
		var execErr error
		conf, execErr = execute(ctx, action)
		if execErr != nil && !common.IsRetryable(execErr) {
			return &common.RetryableError{Err: execErr, Retryable: false}
		}
		return execErr
	}, d.retry)
	if err != nil {
		return model.Confirmation{}, d.wrapStorage(err)
	}
	return conf, nil
}

func (d *Dispatcher) wrapStorage(err error) error {
	if common.IsRetryable(err) || errors.Is(err, common.ErrMaxRetries) {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return err
}
