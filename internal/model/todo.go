package model

import "time"

// TodoPriority orders todo items by importance.
type TodoPriority string

// Priorities.
const (
	PriorityHigh   TodoPriority = "high"
	PriorityMedium TodoPriority = "medium"
	PriorityLow    TodoPriority = "low"
)

// ParseTodoPriority maps a raw string to a priority, defaulting to medium.
func ParseTodoPriority(s string) TodoPriority {
	switch TodoPriority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return TodoPriority(s)
	default:
		return PriorityMedium
	}
}

// TodoStatus is the lifecycle state of a todo item.
type TodoStatus string

// Todo statuses.
const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoDone       TodoStatus = "done"
)

// ParseTodoStatus maps a raw string to a status; unknown strings map to "".
func ParseTodoStatus(s string) TodoStatus {
	switch TodoStatus(s) {
	case TodoPending, TodoInProgress, TodoDone:
		return TodoStatus(s)
	default:
		return ""
	}
}

// TodoItem is a single task owned by a user. Due is optional; an item
// without a due date is never overdue.
type TodoItem struct {
	Due       *time.Time
	CreatedAt time.Time
	ID        string
	UserID    string
	Title     string
	Priority  TodoPriority
	Status    TodoStatus
}

// Overdue reports whether the item's due date is strictly before asOf and
// the item is not done.
func (t TodoItem) Overdue(asOf time.Time) bool {
	if t.Due == nil || t.Status == TodoDone {
		return false
	}
	return t.Due.Before(asOf)
}

// DueToday reports whether the item is due on the same calendar date as
// asOf in the given location.
func (t TodoItem) DueToday(asOf time.Time, loc *time.Location) bool {
	if t.Due == nil {
		return false
	}
	y1, m1, d1 := t.Due.In(loc).Date()
	y2, m2, d2 := asOf.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
