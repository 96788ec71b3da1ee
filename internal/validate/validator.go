// Package validate checks classifier drafts against domain rules and turns
// them into dispatchable actions.
package validate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// Validator applies domain rules to action drafts. It is stateless; the
// same draft against the same stored data always yields the same outcome.
type Validator struct {
	storage  service.Storage
	loc      *time.Location
	currency string
}

// New creates a validator. The location resolves relative date expressions;
// currency is the default for money fields.
func New(storage service.Storage, loc *time.Location, currency string) *Validator {
	return &Validator{storage: storage, loc: loc, currency: currency}
}

// Validate checks a draft and returns exactly one of: a complete action, a
// single clarification question, or a rejection. The returned error is
// reserved for storage failures during reference resolution; domain
// problems are never errors.
func (v *Validator) Validate(ctx context.Context, draft model.ActionDraft, userID, messageID string, asOf time.Time) (model.Validation, error) {
	switch draft.Type {
	case model.ActionRecordExpense:
		return v.validateMoney(draft, userID, messageID, model.KindExpense, asOf), nil
	case model.ActionRecordIncome:
		return v.validateMoney(draft, userID, messageID, model.KindIncome, asOf), nil
	case model.ActionCreateSubscription:
		return v.validateCreateSubscription(draft, userID, messageID, asOf), nil
	case model.ActionCancelSubscription:
		return v.validateCancelSubscription(ctx, draft, userID, messageID)
	case model.ActionQuerySubscriptions:
		return complete(actionBase(draft, userID, messageID, asOf, &model.Action{
			Query: &model.QuerySpec{Status: strings.ToLower(draft.Fields.Status)},
		})), nil
	case model.ActionCreateTodo:
		return v.validateCreateTodo(draft, userID, messageID, asOf), nil
	case model.ActionUpdateTodo:
		return v.validateUpdateTodo(ctx, draft, userID, messageID, asOf)
	case model.ActionQueryTodos:
		return v.validateQueryTodos(draft, userID, messageID, asOf), nil
	case model.ActionQueryReport:
		return complete(actionBase(draft, userID, messageID, asOf, &model.Action{})), nil
	default:
		return reject("I didn't recognize that as something I can do."), nil
	}
}

func (v *Validator) validateMoney(draft model.ActionDraft, userID, messageID string, kind model.RecordKind, asOf time.Time) model.Validation {
	// Amount is the most domain-critical field; ask for it before category.
	if draft.Fields.Amount == "" {
		return clarify("amount", moneyAmountPrompt(kind))
	}
	if draft.Fields.Category == "" {
		return clarify("category", "What category should I file that under?")
	}

	amount, err := parseAmount(draft.Fields.Amount)
	if err != nil {
		return reject(fmt.Sprintf("I couldn't read %q as an amount.", draft.Fields.Amount))
	}
	if !amount.IsPositive() {
		return reject("The amount has to be greater than zero.")
	}

	occurred := asOf
	if draft.Fields.Date != "" {
		occurred, err = ResolveDate(draft.Fields.Date, asOf, v.loc)
		if err != nil {
			return reject(fmt.Sprintf("I couldn't understand the date %q.", draft.Fields.Date))
		}
	}

	currency := draft.Fields.Currency
	if currency == "" {
		currency = v.currency
	}

	return complete(actionBase(draft, userID, messageID, asOf, &model.Action{
		Record: &model.AccountingRecord{
			UserID:     userID,
			Kind:       kind,
			Amount:     amount,
			Currency:   currency,
			Category:   draft.Fields.Category,
			Note:       draft.Fields.Note,
			OccurredAt: occurred,
		},
	}))
}

func (v *Validator) validateCreateSubscription(draft model.ActionDraft, userID, messageID string, asOf time.Time) model.Validation {
	if draft.Fields.Name == "" {
		return clarify("name", "Which service is the subscription for?")
	}
	if draft.Fields.Cost == "" {
		return clarify("cost", "How much does it cost per billing cycle?")
	}
	if draft.Fields.Cycle == "" {
		return clarify("cycle", "How often does it bill, monthly or yearly?")
	}

	cost, err := parseAmount(draft.Fields.Cost)
	if err != nil {
		return reject(fmt.Sprintf("I couldn't read %q as a cost.", draft.Fields.Cost))
	}
	if !cost.IsPositive() {
		return reject("The subscription cost has to be greater than zero.")
	}

	cycle, cycleDays, err := parseCycle(draft.Fields.Cycle)
	if err != nil {
		return reject(fmt.Sprintf("I couldn't understand the billing cycle %q.", draft.Fields.Cycle))
	}

	sub := model.Subscription{
		UserID:    userID,
		Name:      draft.Fields.Name,
		Cost:      cost,
		Currency:  v.currency,
		Cycle:     cycle,
		CycleDays: cycleDays,
		Status:    model.SubscriptionActive,
	}

	if draft.Fields.Date != "" {
		first, derr := ResolveDate(draft.Fields.Date, asOf, v.loc)
		if derr != nil {
			return reject(fmt.Sprintf("I couldn't understand the date %q.", draft.Fields.Date))
		}
		sub.NextCharge = first
	} else {
		sub.NextCharge = sub.NextAfter(asOf)
	}
	// Next charge must be in the future while active.
	sub.Advance(asOf)

	return complete(actionBase(draft, userID, messageID, asOf, &model.Action{Subscription: &sub}))
}

func (v *Validator) validateCancelSubscription(ctx context.Context, draft model.ActionDraft, userID, messageID string) (model.Validation, error) {
	if draft.Fields.Name == "" {
		return clarify("name", "Which subscription should I cancel?"), nil
	}

	matches, err := v.storage.FindSubscriptionsByName(ctx, userID, draft.Fields.Name)
	if err != nil {
		return model.Validation{}, fmt.Errorf("failed to look up subscription %q: %w", draft.Fields.Name, err)
	}

	active := matches[:0]
	for _, m := range matches {
		if m.Status == model.SubscriptionActive {
			active = append(active, m)
		}
	}

	switch len(active) {
	case 0:
		return reject(fmt.Sprintf("I couldn't find an active subscription named %q.", draft.Fields.Name)), nil
	case 1:
		action := actionBase(draft, userID, messageID, time.Time{}, &model.Action{})
		action.TargetID = active[0].ID
		action.TargetName = active[0].Name
		return complete(action), nil
	default:
		names := make([]string, len(active))
		for i, m := range active {
			names[i] = fmt.Sprintf("%s (%s per %s)", m.Name, m.Cost.StringFixed(2), m.Cycle)
		}
		val := clarify("name",
			fmt.Sprintf("I found several matching subscriptions: %s. Which one did you mean?", strings.Join(names, ", ")))
		val.Candidates = names
		return val, nil
	}
}

func (v *Validator) validateCreateTodo(draft model.ActionDraft, userID, messageID string, asOf time.Time) model.Validation {
	if draft.Fields.Title == "" {
		return clarify("title", "What should the task be called?")
	}

	todo := model.TodoItem{
		UserID:   userID,
		Title:    draft.Fields.Title,
		Priority: model.ParseTodoPriority(strings.ToLower(draft.Fields.Priority)),
		Status:   model.TodoPending,
	}

	if draft.Fields.Due != "" {
		due, err := ResolveDate(draft.Fields.Due, asOf, v.loc)
		if err != nil {
			return reject(fmt.Sprintf("I couldn't understand the due date %q.", draft.Fields.Due))
		}
		todo.Due = &due
	}

	return complete(actionBase(draft, userID, messageID, asOf, &model.Action{Todo: &todo}))
}

func (v *Validator) validateUpdateTodo(ctx context.Context, draft model.ActionDraft, userID, messageID string, asOf time.Time) (model.Validation, error) {
	if draft.Fields.Title == "" {
		return clarify("title", "Which task do you mean?"), nil
	}

	matches, err := v.storage.FindTodosByTitle(ctx, userID, draft.Fields.Title)
	if err != nil {
		return model.Validation{}, fmt.Errorf("failed to look up todo %q: %w", draft.Fields.Title, err)
	}

	switch len(matches) {
	case 0:
		return reject(fmt.Sprintf("I couldn't find a task named %q.", draft.Fields.Title)), nil
	case 1:
		// fall through below
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			if m.Due != nil {
				titles[i] = fmt.Sprintf("%s (due %s)", m.Title, m.Due.Format("2006-01-02"))
			} else {
				titles[i] = m.Title
			}
		}
		val := clarify("title",
			fmt.Sprintf("I found several matching tasks: %s. Which one did you mean?", strings.Join(titles, ", ")))
		val.Candidates = titles
		return val, nil
	}

	update := model.TodoUpdate{
		TargetID:  matches[0].ID,
		NewStatus: model.ParseTodoStatus(strings.ToLower(draft.Fields.Status)),
	}
	if draft.Fields.Priority != "" {
		update.NewPriority = model.ParseTodoPriority(strings.ToLower(draft.Fields.Priority))
	}
	if draft.Fields.Due != "" {
		due, derr := ResolveDate(draft.Fields.Due, asOf, v.loc)
		if derr != nil {
			return reject(fmt.Sprintf("I couldn't understand the date %q.", draft.Fields.Due)), nil
		}
		update.NewDue = &due
	}

	if update.NewStatus == "" && update.NewPriority == "" && update.NewDue == nil {
		return reject("Tell me what to change: the status, the priority, or the due date."), nil
	}

	action := actionBase(draft, userID, messageID, asOf, &model.Action{TodoUpdate: &update})
	action.TargetID = matches[0].ID
	action.TargetName = matches[0].Title
	return complete(action), nil
}

func (v *Validator) validateQueryTodos(draft model.ActionDraft, userID, messageID string, asOf time.Time) model.Validation {
	query := model.QuerySpec{
		Status: string(model.ParseTodoStatus(strings.ToLower(draft.Fields.Status))),
	}
	if draft.Fields.Priority != "" {
		query.Priority = string(model.ParseTodoPriority(strings.ToLower(draft.Fields.Priority)))
	}
	if draft.Fields.Due != "" {
		due, err := ResolveDate(draft.Fields.Due, asOf, v.loc)
		if err != nil {
			return reject(fmt.Sprintf("I couldn't understand the date %q.", draft.Fields.Due))
		}
		query.DueOn = &due
	}
	return complete(actionBase(draft, userID, messageID, asOf, &model.Action{Query: &query}))
}

func actionBase(draft model.ActionDraft, userID, messageID string, asOf time.Time, action *model.Action) *model.Action {
	action.Type = draft.Type
	action.UserID = userID
	action.MessageID = messageID
	action.Utterance = draft.Utterance
	action.OccurredAt = asOf
	return action
}

func complete(action *model.Action) model.Validation {
	return model.Validation{Status: model.ValidationComplete, Action: action}
}

func clarify(field, prompt string) model.Validation {
	return model.Validation{
		Status:       model.ValidationNeedsClarification,
		MissingField: field,
		Prompt:       prompt,
	}
}

func reject(reason string) model.Validation {
	return model.Validation{Status: model.ValidationRejected, Reason: reason}
}

func moneyAmountPrompt(kind model.RecordKind) string {
	if kind == model.KindIncome {
		return "How much did you receive?"
	}
	return "How much did you spend?"
}

// parseAmount reads a decimal amount, tolerating stray currency markers.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "¥$€£元 ")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}

// parseCycle reads a billing cycle expression: monthly, yearly, weekly
// (as a 7-day custom cycle), "custom:<days>", or "<n> days".
func parseCycle(s string) (model.BillingCycle, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "monthly", "month", "月", "每月":
		return model.CycleMonthly, 0, nil
	case "yearly", "annual", "annually", "year", "年", "每年":
		return model.CycleYearly, 0, nil
	case "weekly", "week", "周", "每周":
		return model.CycleCustom, 7, nil
	}
	if rest, ok := strings.CutPrefix(s, "custom:"); ok {
		days, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || days <= 0 {
			return "", 0, fmt.Errorf("invalid custom cycle %q", s)
		}
		return model.CycleCustom, days, nil
	}
	if rest, ok := strings.CutSuffix(s, " days"); ok {
		days, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || days <= 0 {
			return "", 0, fmt.Errorf("invalid cycle %q", s)
		}
		return model.CycleCustom, days, nil
	}
	return "", 0, fmt.Errorf("unrecognized cycle %q", s)
}
