// Package report builds the daily digest and schedules its delivery.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// upcomingWindow is how far ahead subscription renewals appear in the digest.
const upcomingWindow = 7 * 24 * time.Hour

// Aggregator assembles a DailyReport from storage. Reports are derived on
// demand and never persisted.
type Aggregator struct {
	storage service.Storage
	loc     *time.Location
}

// NewAggregator creates a report aggregator rendering dates in loc.
func NewAggregator(storage service.Storage, loc *time.Location) *Aggregator {
	return &Aggregator{storage: storage, loc: loc}
}

// Build assembles the report for one user as of the given instant. The
// finance window is the preceding 24 hours; todo and subscription state is
// current. The three reads run concurrently.
func (a *Aggregator) Build(ctx context.Context, userID string, asOf time.Time) (model.DailyReport, error) {
	report := model.DailyReport{
		GeneratedAt: asOf.In(a.loc),
		UserID:      userID,
	}

	var (
		records []model.AccountingRecord
		todos   []model.TodoItem
		subs    []model.Subscription
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = a.storage.GetRecordsByPeriod(gctx, userID, asOf.Add(-24*time.Hour), asOf)
		if err != nil {
			return fmt.Errorf("failed to load records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		todos, err = a.storage.GetTodos(gctx, userID, service.TodoFilter{})
		if err != nil {
			return fmt.Errorf("failed to load todos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subs, err = a.storage.GetSubscriptions(gctx, userID, model.SubscriptionActive)
		if err != nil {
			return fmt.Errorf("failed to load subscriptions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DailyReport{}, err
	}

	for _, r := range records {
		switch r.Kind {
		case model.KindIncome:
			report.IncomeTotal = report.IncomeTotal.Add(r.Amount)
		case model.KindExpense:
			report.ExpenseTotal = report.ExpenseTotal.Add(r.Amount)
		}
	}
	report.RecordCount = len(records)

	for _, t := range todos {
		switch {
		case t.Overdue(asOf):
			report.Overdue = append(report.Overdue, t)
		case t.Status != model.TodoDone && t.DueToday(asOf, a.loc):
			report.DueToday = append(report.DueToday, t)
		}
	}

	cutoff := asOf.Add(upcomingWindow)
	for _, s := range subs {
		// Lapsed charge dates roll forward so the digest never announces a
		// renewal in the past. The local copy only; persistence is the
		// subscription handler's job.
		s.Advance(asOf)
		if !s.NextCharge.After(cutoff) {
			report.UpcomingBills = append(report.UpcomingBills, s)
		}
	}

	return report, nil
}
