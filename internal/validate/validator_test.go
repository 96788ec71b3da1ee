package validate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// mockStorage implements service.Storage for validator tests. Only the
// lookup methods are exercised here.
type mockStorage struct {
	findSubsFn  func(ctx context.Context, userID, name string) ([]model.Subscription, error)
	findTodosFn func(ctx context.Context, userID, title string) ([]model.TodoItem, error)
}

func (m *mockStorage) SaveRecord(_ context.Context, _ *model.AccountingRecord) error { return nil }
func (m *mockStorage) GetRecordsByPeriod(_ context.Context, _ string, _, _ time.Time) ([]model.AccountingRecord, error) {
	return nil, nil
}
func (m *mockStorage) SaveSubscription(_ context.Context, _ *model.Subscription) error   { return nil }
func (m *mockStorage) UpdateSubscription(_ context.Context, _ *model.Subscription) error { return nil }
func (m *mockStorage) GetSubscriptionByID(_ context.Context, _ string) (*model.Subscription, error) {
	return nil, nil
}
func (m *mockStorage) GetSubscriptions(_ context.Context, _ string, _ model.SubscriptionStatus) ([]model.Subscription, error) {
	return nil, nil
}
func (m *mockStorage) FindSubscriptionsByName(ctx context.Context, userID, name string) ([]model.Subscription, error) {
	if m.findSubsFn != nil {
		return m.findSubsFn(ctx, userID, name)
	}
	return nil, nil
}
func (m *mockStorage) SaveTodo(_ context.Context, _ *model.TodoItem) error   { return nil }
func (m *mockStorage) UpdateTodo(_ context.Context, _ *model.TodoItem) error { return nil }
func (m *mockStorage) GetTodoByID(_ context.Context, _ string) (*model.TodoItem, error) {
	return nil, nil
}
func (m *mockStorage) GetTodos(_ context.Context, _ string, _ service.TodoFilter) ([]model.TodoItem, error) {
	return nil, nil
}
func (m *mockStorage) FindTodosByTitle(ctx context.Context, userID, title string) ([]model.TodoItem, error) {
	if m.findTodosFn != nil {
		return m.findTodosFn(ctx, userID, title)
	}
	return nil, nil
}
func (m *mockStorage) ListUsers(_ context.Context) ([]string, error) { return nil, nil }
func (m *mockStorage) Migrate(_ context.Context) error               { return nil }
func (m *mockStorage) Ping(_ context.Context) error                  { return nil }
func (m *mockStorage) Close() error                                  { return nil }

func newTestValidator(store *mockStorage) *Validator {
	if store == nil {
		store = &mockStorage{}
	}
	return New(store, time.UTC, "CNY")
}

func draft(actionType model.ActionType, fields model.DraftFields) model.ActionDraft {
	return model.ActionDraft{Type: actionType, Utterance: "test utterance", Fields: fields}
}

var asOf = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func TestValidateExpenseComplete(t *testing.T) {
	v := newTestValidator(nil)

	val, err := v.Validate(context.Background(), draft(model.ActionRecordExpense, model.DraftFields{
		Amount:   "30元",
		Category: "food",
		Date:     "今天",
	}), "user-1", "msg-1", asOf)
	require.NoError(t, err)

	require.Equal(t, model.ValidationComplete, val.Status)
	require.NotNil(t, val.Action.Record)
	assert.Equal(t, model.KindExpense, val.Action.Record.Kind)
	assert.True(t, decimal.NewFromInt(30).Equal(val.Action.Record.Amount))
	assert.Equal(t, "food", val.Action.Record.Category)
	assert.Equal(t, "CNY", val.Action.Record.Currency)
	assert.Equal(t, asOf.Year(), val.Action.Record.OccurredAt.Year())
}

func TestValidateExpenseMissingAmount(t *testing.T) {
	v := newTestValidator(nil)

	val, err := v.Validate(context.Background(), draft(model.ActionRecordExpense, model.DraftFields{
		Category: "food",
	}), "user-1", "msg-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, model.ValidationNeedsClarification, val.Status)
	assert.Equal(t, "amount", val.MissingField)
	assert.NotEmpty(t, val.Prompt)
}

func TestValidateExpenseAmountAskedBeforeCategory(t *testing.T) {
	v := newTestValidator(nil)

	// Both amount and category missing: amount must be asked first, and
	// only one question at a time.
	val, err := v.Validate(context.Background(), draft(model.ActionRecordExpense, model.DraftFields{}), "user-1", "msg-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, model.ValidationNeedsClarification, val.Status)
	assert.Equal(t, "amount", val.MissingField)
}

func TestValidateExpenseRejectsNonPositiveAmount(t *testing.T) {
	v := newTestValidator(nil)

	for _, amount := range []string{"0", "-12.50"} {
		val, err := v.Validate(context.Background(), draft(model.ActionRecordExpense, model.DraftFields{
			Amount:   amount,
			Category: "food",
		}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationRejected, val.Status, "amount %q", amount)
		assert.NotEmpty(t, val.Reason)
	}
}

func TestValidateRejectionIsStable(t *testing.T) {
	v := newTestValidator(nil)
	d := draft(model.ActionRecordExpense, model.DraftFields{Amount: "gibberish", Category: "food"})

	first, err := v.Validate(context.Background(), d, "user-1", "msg-1", asOf)
	require.NoError(t, err)
	second, err := v.Validate(context.Background(), d, "user-1", "msg-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, model.ValidationRejected, first.Status)
	assert.Equal(t, first, second)
}

func TestValidateSubscriptionFieldOrder(t *testing.T) {
	v := newTestValidator(nil)

	tests := []struct {
		name    string
		fields  model.DraftFields
		missing string
	}{
		{"all missing asks name", model.DraftFields{}, "name"},
		{"name present asks cost", model.DraftFields{Name: "Netflix"}, "cost"},
		{"name and cost present asks cycle", model.DraftFields{Name: "Netflix", Cost: "45"}, "cycle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := v.Validate(context.Background(), draft(model.ActionCreateSubscription, tt.fields), "user-1", "msg-1", asOf)
			require.NoError(t, err)
			assert.Equal(t, model.ValidationNeedsClarification, val.Status)
			assert.Equal(t, tt.missing, val.MissingField)
		})
	}
}

func TestValidateSubscriptionComplete(t *testing.T) {
	v := newTestValidator(nil)

	val, err := v.Validate(context.Background(), draft(model.ActionCreateSubscription, model.DraftFields{
		Name:  "Netflix",
		Cost:  "45",
		Cycle: "monthly",
	}), "user-1", "msg-1", asOf)
	require.NoError(t, err)

	require.Equal(t, model.ValidationComplete, val.Status)
	sub := val.Action.Subscription
	require.NotNil(t, sub)
	assert.Equal(t, model.CycleMonthly, sub.Cycle)
	assert.True(t, sub.NextCharge.After(asOf), "next charge must be in the future")
}

func TestValidateCancelSubscriptionResolution(t *testing.T) {
	netflix := model.Subscription{ID: "sub-1", Name: "Netflix", Status: model.SubscriptionActive, Cost: decimal.NewFromInt(45), Cycle: model.CycleMonthly}
	hulu := model.Subscription{ID: "sub-2", Name: "Netflix Family", Status: model.SubscriptionActive, Cost: decimal.NewFromInt(60), Cycle: model.CycleMonthly}

	t.Run("no match rejects", func(t *testing.T) {
		v := newTestValidator(&mockStorage{
			findSubsFn: func(_ context.Context, _, _ string) ([]model.Subscription, error) {
				return nil, nil
			},
		})
		val, err := v.Validate(context.Background(), draft(model.ActionCancelSubscription, model.DraftFields{Name: "Netflix"}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationRejected, val.Status)
	})

	t.Run("single match completes with target", func(t *testing.T) {
		v := newTestValidator(&mockStorage{
			findSubsFn: func(_ context.Context, _, _ string) ([]model.Subscription, error) {
				return []model.Subscription{netflix}, nil
			},
		})
		val, err := v.Validate(context.Background(), draft(model.ActionCancelSubscription, model.DraftFields{Name: "Netflix"}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		require.Equal(t, model.ValidationComplete, val.Status)
		assert.Equal(t, "sub-1", val.Action.TargetID)
		assert.Equal(t, "Netflix", val.Action.TargetName)
	})

	t.Run("multiple matches ask which", func(t *testing.T) {
		v := newTestValidator(&mockStorage{
			findSubsFn: func(_ context.Context, _, _ string) ([]model.Subscription, error) {
				return []model.Subscription{netflix, hulu}, nil
			},
		})
		val, err := v.Validate(context.Background(), draft(model.ActionCancelSubscription, model.DraftFields{Name: "Netflix"}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationNeedsClarification, val.Status)
		assert.Len(t, val.Candidates, 2)
	})

	t.Run("cancelled subscriptions are invisible", func(t *testing.T) {
		gone := netflix
		gone.Status = model.SubscriptionCancelled
		v := newTestValidator(&mockStorage{
			findSubsFn: func(_ context.Context, _, _ string) ([]model.Subscription, error) {
				return []model.Subscription{gone}, nil
			},
		})
		val, err := v.Validate(context.Background(), draft(model.ActionCancelSubscription, model.DraftFields{Name: "Netflix"}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationRejected, val.Status)
	})

	t.Run("storage failure is an error, not a rejection", func(t *testing.T) {
		v := newTestValidator(&mockStorage{
			findSubsFn: func(_ context.Context, _, _ string) ([]model.Subscription, error) {
				return nil, errors.New("db locked")
			},
		})
		_, err := v.Validate(context.Background(), draft(model.ActionCancelSubscription, model.DraftFields{Name: "Netflix"}), "user-1", "msg-1", asOf)
		assert.Error(t, err)
	})
}

func TestValidateCreateTodo(t *testing.T) {
	v := newTestValidator(nil)

	t.Run("title required", func(t *testing.T) {
		val, err := v.Validate(context.Background(), draft(model.ActionCreateTodo, model.DraftFields{}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationNeedsClarification, val.Status)
		assert.Equal(t, "title", val.MissingField)
	})

	t.Run("due date optional", func(t *testing.T) {
		val, err := v.Validate(context.Background(), draft(model.ActionCreateTodo, model.DraftFields{Title: "call the bank"}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		require.Equal(t, model.ValidationComplete, val.Status)
		assert.Nil(t, val.Action.Todo.Due)
		assert.Equal(t, model.PriorityMedium, val.Action.Todo.Priority)
	})

	t.Run("meeting tomorrow afternoon", func(t *testing.T) {
		val, err := v.Validate(context.Background(), draft(model.ActionCreateTodo, model.DraftFields{
			Title: "开会",
			Due:   "明天下午3点",
		}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		require.Equal(t, model.ValidationComplete, val.Status)
		require.NotNil(t, val.Action.Todo.Due)
		due := *val.Action.Todo.Due
		assert.Equal(t, 15, due.Hour())
		assert.Equal(t, asOf.Day()+1, due.Day())
	})
}

func TestValidateUpdateTodo(t *testing.T) {
	item := model.TodoItem{ID: "todo-1", Title: "call the bank", Status: model.TodoPending, Priority: model.PriorityMedium}

	t.Run("resolves single match and builds update", func(t *testing.T) {
		v := newTestValidator(&mockStorage{
			findTodosFn: func(_ context.Context, _, _ string) ([]model.TodoItem, error) {
				return []model.TodoItem{item}, nil
			},
		})
		val, err := v.Validate(context.Background(), draft(model.ActionUpdateTodo, model.DraftFields{
			Title:  "bank",
			Status: "done",
		}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		require.Equal(t, model.ValidationComplete, val.Status)
		require.NotNil(t, val.Action.TodoUpdate)
		assert.Equal(t, "todo-1", val.Action.TodoUpdate.TargetID)
		assert.Equal(t, model.TodoDone, val.Action.TodoUpdate.NewStatus)
	})

	t.Run("nothing to change rejects", func(t *testing.T) {
		v := newTestValidator(&mockStorage{
			findTodosFn: func(_ context.Context, _, _ string) ([]model.TodoItem, error) {
				return []model.TodoItem{item}, nil
			},
		})
		val, err := v.Validate(context.Background(), draft(model.ActionUpdateTodo, model.DraftFields{
			Title: "bank",
		}), "user-1", "msg-1", asOf)
		require.NoError(t, err)
		assert.Equal(t, model.ValidationRejected, val.Status)
	})
}

func TestValidateUnknownActionRejected(t *testing.T) {
	v := newTestValidator(nil)

	val, err := v.Validate(context.Background(), draft(model.ActionUnknown, model.DraftFields{}), "user-1", "msg-1", asOf)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationRejected, val.Status)
}

func TestParseCycle(t *testing.T) {
	tests := []struct {
		in       string
		cycle    model.BillingCycle
		days     int
		parseErr bool
	}{
		{"monthly", model.CycleMonthly, 0, false},
		{"每月", model.CycleMonthly, 0, false},
		{"yearly", model.CycleYearly, 0, false},
		{"weekly", model.CycleCustom, 7, false},
		{"custom:14", model.CycleCustom, 14, false},
		{"30 days", model.CycleCustom, 30, false},
		{"fortnightly", "", 0, true},
		{"custom:-2", "", 0, true},
	}

	for _, tt := range tests {
		cycle, days, err := parseCycle(tt.in)
		if tt.parseErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.cycle, cycle)
		assert.Equal(t, tt.days, days)
	}
}
