package model

import "time"

// InboundMessage crosses the transport boundary into the pipeline.
type InboundMessage struct {
	ReceivedAt time.Time
	Platform   string
	UserID     string
	MessageID  string
	Text       string
}

// Confirmation is the structured result of applying or querying an action.
// Text is what the user sees; the entity fields let callers log structured
// data. Only the fields matching the action's domain are populated.
type Confirmation struct {
	Record        *AccountingRecord
	Subscription  *Subscription
	Todo          *TodoItem
	Report        *DailyReport
	Text          string
	Records       []AccountingRecord
	Subscriptions []Subscription
	Todos         []TodoItem
}
