package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/majordomo/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrInvalidSub       = errors.New("invalid subscription")
	ErrInvalidTodo      = errors.New("invalid todo")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRecord(record *model.AccountingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if record.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidRecord)
	}
	if record.Kind != model.KindIncome && record.Kind != model.KindExpense {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, record.Kind)
	}
	if !record.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRecord)
	}
	if record.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing occurrence time", ErrInvalidRecord)
	}
	return nil
}

func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if sub.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidSub)
	}
	if sub.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidSub)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSub)
	}
	if !sub.Cost.IsPositive() {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidSub)
	}
	switch sub.Cycle {
	case model.CycleMonthly, model.CycleYearly:
	case model.CycleCustom:
		if sub.CycleDays <= 0 {
			return fmt.Errorf("%w: custom cycle needs a day count", ErrInvalidSub)
		}
	default:
		return fmt.Errorf("%w: unknown cycle %q", ErrInvalidSub, sub.Cycle)
	}
	return nil
}

func validateTodo(todo *model.TodoItem) error {
	if todo == nil {
		return fmt.Errorf("%w: todo", ErrNilParameter)
	}
	if todo.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTodo)
	}
	if todo.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidTodo)
	}
	if strings.TrimSpace(todo.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidTodo)
	}
	return nil
}
