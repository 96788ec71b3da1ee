// Package task contains the domain handlers that translate validated
// actions into storage operations. Handlers are the only components that
// talk to the storage collaborator.
package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// AccountingHandler applies and queries income/expense records.
type AccountingHandler struct {
	storage service.Storage
	now     func() time.Time
}

// NewAccountingHandler creates the accounting domain handler.
func NewAccountingHandler(storage service.Storage) *AccountingHandler {
	return &AccountingHandler{storage: storage, now: time.Now}
}

// Apply writes one accounting record and shapes the confirmation.
func (h *AccountingHandler) Apply(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	if action.Record == nil {
		return model.Confirmation{}, fmt.Errorf("accounting apply without record payload")
	}

	record := *action.Record
	record.ID = uuid.NewString()
	record.CreatedAt = h.now()

	if err := h.storage.SaveRecord(ctx, &record); err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to save record: %w", err)
	}

	verb := "expense"
	if record.Kind == model.KindIncome {
		verb = "income"
	}
	text := fmt.Sprintf("Recorded %s: %s %s, category %s.",
		verb, record.Amount.StringFixed(2), record.Currency, record.Category)
	if record.Note != "" {
		text += fmt.Sprintf(" (%s)", record.Note)
	}

	return model.Confirmation{Record: &record, Text: text}, nil
}

// Query summarizes the last 30 days of records.
func (h *AccountingHandler) Query(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	end := h.now()
	start := end.AddDate(0, 0, -30)

	records, err := h.storage.GetRecordsByPeriod(ctx, action.UserID, start, end)
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to query records: %w", err)
	}

	if len(records) == 0 {
		return model.Confirmation{Text: "No income or expense records in the last 30 days."}, nil
	}

	income, expense := SumRecords(records)
	byCategory := map[string]decimal.Decimal{}
	categories := make([]string, 0, len(byCategory))
	for _, r := range records {
		if r.Kind != model.KindExpense {
			continue
		}
		if _, seen := byCategory[r.Category]; !seen {
			categories = append(categories, r.Category)
		}
		byCategory[r.Category] = byCategory[r.Category].Add(r.Amount)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "Last 30 days: income %s, expenses %s, net %s (%d records).",
		income.StringFixed(2), expense.StringFixed(2), income.Sub(expense).StringFixed(2), len(records))
	for _, category := range categories {
		fmt.Fprintf(&b, "\n  %s: %s", category, byCategory[category].StringFixed(2))
	}

	return model.Confirmation{Records: records, Text: b.String()}, nil
}

// SumRecords totals income and expense amounts across records.
func SumRecords(records []model.AccountingRecord) (income, expense decimal.Decimal) {
	for _, r := range records {
		switch r.Kind {
		case model.KindIncome:
			income = income.Add(r.Amount)
		case model.KindExpense:
			expense = expense.Add(r.Amount)
		}
	}
	return income, expense
}
