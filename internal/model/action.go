// Package model defines the core domain models used throughout the application.
package model

import "time"

// ActionType identifies one supported command in the closed action set.
type ActionType string

// Supported action types.
const (
	ActionRecordExpense      ActionType = "record_expense"
	ActionRecordIncome       ActionType = "record_income"
	ActionCreateSubscription ActionType = "create_subscription"
	ActionQuerySubscriptions ActionType = "query_subscriptions"
	ActionCancelSubscription ActionType = "cancel_subscription"
	ActionCreateTodo         ActionType = "create_todo"
	ActionQueryTodos         ActionType = "query_todos"
	ActionUpdateTodo         ActionType = "update_todo"
	ActionQueryReport        ActionType = "query_report"
	ActionUnknown            ActionType = "unknown"
)

// ParseActionType maps a raw string to a known action type, or ActionUnknown.
func ParseActionType(s string) ActionType {
	switch ActionType(s) {
	case ActionRecordExpense, ActionRecordIncome,
		ActionCreateSubscription, ActionQuerySubscriptions, ActionCancelSubscription,
		ActionCreateTodo, ActionQueryTodos, ActionUpdateTodo,
		ActionQueryReport:
		return ActionType(s)
	default:
		return ActionUnknown
	}
}

// Domain groups action types by the handler that serves them.
type Domain string

// Handler domains.
const (
	DomainAccounting   Domain = "accounting"
	DomainSubscription Domain = "subscription"
	DomainTodo         Domain = "todo"
	DomainReport       Domain = "report"
	DomainNone         Domain = ""
)

// Domain returns the handler domain for an action type.
func (t ActionType) Domain() Domain {
	switch t {
	case ActionRecordExpense, ActionRecordIncome:
		return DomainAccounting
	case ActionCreateSubscription, ActionQuerySubscriptions, ActionCancelSubscription:
		return DomainSubscription
	case ActionCreateTodo, ActionQueryTodos, ActionUpdateTodo:
		return DomainTodo
	case ActionQueryReport:
		return DomainReport
	default:
		return DomainNone
	}
}

// IsQuery reports whether the action reads rather than writes.
func (t ActionType) IsQuery() bool {
	switch t {
	case ActionQuerySubscriptions, ActionQueryTodos, ActionQueryReport:
		return true
	default:
		return false
	}
}

// DraftFields holds the loosely-typed fields extracted by the classifier.
// Everything is a string until the validator has parsed it; absent fields
// are empty strings.
type DraftFields struct {
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Category string `json:"category,omitempty"`
	Note     string `json:"note,omitempty"`
	Date     string `json:"date,omitempty"`
	Name     string `json:"name,omitempty"`
	Cost     string `json:"cost,omitempty"`
	Cycle    string `json:"cycle,omitempty"`
	Title    string `json:"title,omitempty"`
	Priority string `json:"priority,omitempty"`
	Due      string `json:"due,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ActionDraft is the classifier's untrusted interpretation of an utterance.
// It becomes an Action only after validation.
type ActionDraft struct {
	Type       ActionType
	Utterance  string
	Fields     DraftFields
	Confidence float64
}

// TodoUpdate describes a mutation of an existing todo item resolved by name.
// Zero-valued fields are left untouched.
type TodoUpdate struct {
	TargetID    string
	NewStatus   TodoStatus
	NewPriority TodoPriority
	NewDue      *time.Time
}

// QuerySpec narrows a read-style action.
type QuerySpec struct {
	Status   string
	Priority string
	DueOn    *time.Time
}

// Action is a validated, dispatchable representation of user intent.
// Exactly one payload pointer is set, matching Type.Domain().
type Action struct {
	OccurredAt   time.Time
	Record       *AccountingRecord
	Subscription *Subscription
	Todo         *TodoItem
	TodoUpdate   *TodoUpdate
	Query        *QuerySpec
	Type         ActionType
	UserID       string
	MessageID    string
	Utterance    string
	// TargetID is the resolved entity for reference-style actions
	// (cancel_subscription).
	TargetID   string
	TargetName string
}

// ValidationStatus is the outcome class of validating a draft.
type ValidationStatus string

// Validation outcomes. A draft is exactly one of these, never several.
const (
	ValidationComplete           ValidationStatus = "complete"
	ValidationNeedsClarification ValidationStatus = "needs_clarification"
	ValidationRejected           ValidationStatus = "rejected"
)

// Validation is the result of checking an ActionDraft against domain rules.
type Validation struct {
	Action       *Action
	Status       ValidationStatus
	MissingField string
	Prompt       string
	Reason       string
	Candidates   []string
}
