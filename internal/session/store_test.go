package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/majordomo/internal/model"
)

func TestAppendTurnTrimsHistory(t *testing.T) {
	store := NewStore(3, time.Hour)

	for i := 0; i < 5; i++ {
		store.AppendTurn("user-1", Turn{Text: string(rune('a' + i))})
	}

	sess := store.Get("user-1")
	require.Len(t, sess.Turns, 3)
	assert.Equal(t, "c", sess.Turns[0].Text)
	assert.Equal(t, "e", sess.Turns[2].Text)
}

func TestSessionsAreIsolatedByUser(t *testing.T) {
	store := NewStore(10, time.Hour)

	store.AppendTurn("user-1", Turn{Text: "hello"})
	store.SetPending("user-1", Pending{Question: "how much?"})

	other := store.Get("user-2")
	assert.Empty(t, other.Turns)
	assert.Nil(t, other.Pending)
}

func TestTakePendingIsReadAndClear(t *testing.T) {
	store := NewStore(10, time.Hour)

	store.SetPending("user-1", Pending{
		Question:     "how much?",
		MissingField: "amount",
		Draft:        model.ActionDraft{Type: model.ActionRecordExpense},
	})

	first := store.TakePending("user-1")
	require.NotNil(t, first)
	assert.Equal(t, "amount", first.MissingField)

	second := store.TakePending("user-1")
	assert.Nil(t, second)
}

func TestSetPendingReplacesPrior(t *testing.T) {
	store := NewStore(10, time.Hour)

	store.SetPending("user-1", Pending{Question: "first?"})
	store.SetPending("user-1", Pending{Question: "second?"})

	p := store.TakePending("user-1")
	require.NotNil(t, p)
	assert.Equal(t, "second?", p.Question)
}

func TestIdleSessionsEvict(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	store := NewStore(10, 30*time.Minute)
	store.now = func() time.Time { return now }

	store.AppendTurn("user-1", Turn{Text: "hello"})
	store.SetPending("user-1", Pending{Question: "how much?"})

	// Just inside the idle window: everything survives.
	now = now.Add(29 * time.Minute)
	sess := store.Get("user-1")
	assert.Len(t, sess.Turns, 1)
	require.NotNil(t, sess.Pending)

	// Past the idle window: the session is gone, pending included.
	now = now.Add(2 * time.Hour)
	sess = store.Get("user-1")
	assert.Empty(t, sess.Turns)
	assert.Nil(t, sess.Pending)
}

func TestGetReturnsSnapshot(t *testing.T) {
	store := NewStore(10, time.Hour)
	store.AppendTurn("user-1", Turn{Text: "hello"})

	sess := store.Get("user-1")
	sess.Turns[0].Text = "mutated"

	again := store.Get("user-1")
	assert.Equal(t, "hello", again.Turns[0].Text)
}
