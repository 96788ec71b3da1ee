package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport is the derived summary of a user's prior-day finances and
// current todo state. It is regenerated each run, never persisted.
type DailyReport struct {
	GeneratedAt   time.Time
	UserID        string
	Overdue       []TodoItem
	DueToday      []TodoItem
	UpcomingBills []Subscription
	IncomeTotal   decimal.Decimal
	ExpenseTotal  decimal.Decimal
	RecordCount   int
}

// Net returns income minus expenses for the window.
func (r DailyReport) Net() decimal.Decimal {
	return r.IncomeTotal.Sub(r.ExpenseTotal)
}

// Render formats the report as plain chat text.
func (r DailyReport) Render() string {
	var b strings.Builder

	date := r.GeneratedAt.Format("2006-01-02 Monday")
	fmt.Fprintf(&b, "Daily report for %s\n\n", date)

	b.WriteString("Last 24h finances:\n")
	if r.RecordCount == 0 {
		b.WriteString("  no records\n")
	} else {
		fmt.Fprintf(&b, "  income %s | expenses %s | net %s (%d records)\n",
			r.IncomeTotal.StringFixed(2), r.ExpenseTotal.StringFixed(2), r.Net().StringFixed(2), r.RecordCount)
	}

	if len(r.Overdue) > 0 {
		b.WriteString("\nOverdue:\n")
		for _, t := range r.Overdue {
			fmt.Fprintf(&b, "  - %s [%s] (due %s)\n", t.Title, t.Priority, t.Due.Format("2006-01-02"))
		}
	}

	b.WriteString("\nDue today:\n")
	if len(r.DueToday) == 0 {
		b.WriteString("  nothing due today\n")
	} else {
		for _, t := range r.DueToday {
			fmt.Fprintf(&b, "  - %s [%s]\n", t.Title, t.Priority)
		}
	}

	if len(r.UpcomingBills) > 0 {
		b.WriteString("\nRenewing within 7 days:\n")
		for _, s := range r.UpcomingBills {
			fmt.Fprintf(&b, "  - %s %s on %s\n", s.Name, s.Cost.StringFixed(2), s.NextCharge.Format("2006-01-02"))
		}
	}

	return b.String()
}
