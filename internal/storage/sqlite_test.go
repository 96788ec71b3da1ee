package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

var (
	testTime = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
)

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	assert.NoError(t, store.Migrate(context.Background()))
}

func TestPing(t *testing.T) {
	store := newTestStorage(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSaveAndQueryRecords(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	inWindow := model.AccountingRecord{
		ID:         "rec-1",
		UserID:     "user-1",
		Kind:       model.KindExpense,
		Amount:     decimal.RequireFromString("30.50"),
		Currency:   "CNY",
		Category:   "food",
		Note:       "lunch",
		OccurredAt: testTime,
		CreatedAt:  testTime,
	}
	outOfWindow := inWindow
	outOfWindow.ID = "rec-2"
	outOfWindow.OccurredAt = testTime.AddDate(0, 0, -3)
	otherUser := inWindow
	otherUser.ID = "rec-3"
	otherUser.UserID = "user-2"

	require.NoError(t, store.SaveRecord(ctx, &inWindow))
	require.NoError(t, store.SaveRecord(ctx, &outOfWindow))
	require.NoError(t, store.SaveRecord(ctx, &otherUser))

	records, err := store.GetRecordsByPeriod(ctx, "user-1", testTime.Add(-24*time.Hour), testTime.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, model.KindExpense, got.Kind)
	assert.True(t, decimal.RequireFromString("30.50").Equal(got.Amount))
	assert.Equal(t, "lunch", got.Note)
}

func TestSaveRecordRejectsInvalid(t *testing.T) {
	store := newTestStorage(t)

	err := store.SaveRecord(context.Background(), &model.AccountingRecord{
		ID:     "rec-1",
		UserID: "user-1",
		Kind:   model.KindExpense,
		Amount: decimal.NewFromInt(-5),
	})
	assert.Error(t, err)
}

func testSubscription(id string) *model.Subscription {
	return &model.Subscription{
		ID:         id,
		UserID:     "user-1",
		Name:       "Netflix",
		Cost:       decimal.NewFromInt(45),
		Currency:   "CNY",
		Cycle:      model.CycleMonthly,
		Status:     model.SubscriptionActive,
		NextCharge: testTime.AddDate(0, 1, 0),
		CreatedAt:  testTime,
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	sub := testSubscription("sub-1")
	require.NoError(t, store.SaveSubscription(ctx, sub))

	got, err := store.GetSubscriptionByID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Netflix", got.Name)
	assert.Equal(t, model.CycleMonthly, got.Cycle)
	assert.True(t, decimal.NewFromInt(45).Equal(got.Cost))

	got.Status = model.SubscriptionCancelled
	require.NoError(t, store.UpdateSubscription(ctx, got))

	active, err := store.GetSubscriptions(ctx, "user-1", model.SubscriptionActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.GetSubscriptions(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFindSubscriptionsByNameIsFuzzy(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSubscription(ctx, testSubscription("sub-1")))
	other := testSubscription("sub-2")
	other.Name = "Spotify"
	require.NoError(t, store.SaveSubscription(ctx, other))

	matches, err := store.FindSubscriptionsByName(ctx, "user-1", "netf")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Netflix", matches[0].Name)
}

func TestSubscriptionNotFound(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetSubscriptionByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.UpdateSubscription(ctx, testSubscription("missing"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testTodo(id, title string) *model.TodoItem {
	return &model.TodoItem{
		ID:        id,
		UserID:    "user-1",
		Title:     title,
		Priority:  model.PriorityMedium,
		Status:    model.TodoPending,
		CreatedAt: testTime,
	}
}

func TestTodoLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	todo := testTodo("todo-1", "call the bank")
	due := testTime.AddDate(0, 0, 1)
	todo.Due = &due
	require.NoError(t, store.SaveTodo(ctx, todo))

	got, err := store.GetTodoByID(ctx, "todo-1")
	require.NoError(t, err)
	assert.Equal(t, "call the bank", got.Title)
	require.NotNil(t, got.Due)
	assert.True(t, due.Equal(*got.Due))

	got.Status = model.TodoDone
	require.NoError(t, store.UpdateTodo(ctx, got))

	pending, err := store.GetTodos(ctx, "user-1", service.TodoFilter{Status: model.TodoPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGetTodosFilters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	noDue := testTodo("todo-1", "no due date")
	require.NoError(t, store.SaveTodo(ctx, noDue))

	tomorrow := testTodo("todo-2", "due tomorrow")
	due := testTime.AddDate(0, 0, 1)
	tomorrow.Due = &due
	tomorrow.Priority = model.PriorityHigh
	require.NoError(t, store.SaveTodo(ctx, tomorrow))

	byPriority, err := store.GetTodos(ctx, "user-1", service.TodoFilter{Priority: model.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, "todo-2", byPriority[0].ID)

	byDay, err := store.GetTodos(ctx, "user-1", service.TodoFilter{DueOn: &due})
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, "todo-2", byDay[0].ID)

	all, err := store.GetTodos(ctx, "user-1", service.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Dated todos come before undated ones.
	assert.Equal(t, "todo-2", all[0].ID)
}

func TestFindTodosByTitleExcludesDone(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	open := testTodo("todo-1", "call the bank")
	require.NoError(t, store.SaveTodo(ctx, open))

	finished := testTodo("todo-2", "call the bank again")
	finished.Status = model.TodoDone
	require.NoError(t, store.SaveTodo(ctx, finished))

	matches, err := store.FindTodosByTitle(ctx, "user-1", "bank")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "todo-1", matches[0].ID)
}

func TestTodoNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetTodoByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListUsersSpansAllTables(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	record := model.AccountingRecord{
		ID: "rec-1", UserID: "alice", Kind: model.KindIncome,
		Amount: decimal.NewFromInt(1), Currency: "CNY", Category: "salary",
		OccurredAt: testTime, CreatedAt: testTime,
	}
	require.NoError(t, store.SaveRecord(ctx, &record))

	sub := testSubscription("sub-1")
	sub.UserID = "bob"
	require.NoError(t, store.SaveSubscription(ctx, sub))

	todo := testTodo("todo-1", "task")
	todo.UserID = "carol"
	require.NoError(t, store.SaveTodo(ctx, todo))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, users)
}
