package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// SubscriptionHandler applies and queries recurring subscriptions.
type SubscriptionHandler struct {
	storage service.Storage
	now     func() time.Time
}

// NewSubscriptionHandler creates the subscription domain handler.
func NewSubscriptionHandler(storage service.Storage) *SubscriptionHandler {
	return &SubscriptionHandler{storage: storage, now: time.Now}
}

// Apply creates or cancels a subscription depending on the action type.
func (h *SubscriptionHandler) Apply(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	switch action.Type {
	case model.ActionCreateSubscription:
		return h.create(ctx, action)
	case model.ActionCancelSubscription:
		return h.cancel(ctx, action)
	default:
		return model.Confirmation{}, fmt.Errorf("subscription handler cannot apply %s", action.Type)
	}
}

func (h *SubscriptionHandler) create(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	if action.Subscription == nil {
		return model.Confirmation{}, fmt.Errorf("subscription apply without payload")
	}

	sub := *action.Subscription
	sub.ID = uuid.NewString()
	sub.CreatedAt = h.now()
	sub.Status = model.SubscriptionActive

	if err := h.storage.SaveSubscription(ctx, &sub); err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to save subscription: %w", err)
	}

	text := fmt.Sprintf("Subscription %s added: %s %s per %s, next charge on %s.",
		sub.Name, sub.Cost.StringFixed(2), sub.Currency, cycleLabel(&sub),
		sub.NextCharge.Format("2006-01-02"))
	return model.Confirmation{Subscription: &sub, Text: text}, nil
}

func (h *SubscriptionHandler) cancel(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	sub, err := h.storage.GetSubscriptionByID(ctx, action.TargetID)
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to load subscription %s: %w", action.TargetID, err)
	}

	sub.Status = model.SubscriptionCancelled
	if err := h.storage.UpdateSubscription(ctx, sub); err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to cancel subscription %s: %w", sub.ID, err)
	}

	text := fmt.Sprintf("Subscription %s cancelled. No further charges will be tracked.", sub.Name)
	return model.Confirmation{Subscription: sub, Text: text}, nil
}

// Query lists active subscriptions with the combined monthly cost. Lapsed
// next-charge dates are rolled forward before rendering so the listing
// always shows an upcoming date.
func (h *SubscriptionHandler) Query(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	subs, err := h.storage.GetSubscriptions(ctx, action.UserID, model.SubscriptionActive)
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to query subscriptions: %w", err)
	}

	if len(subs) == 0 {
		return model.Confirmation{Text: "You have no active subscriptions."}, nil
	}

	now := h.now()
	monthly := decimal.Zero
	var b strings.Builder
	fmt.Fprintf(&b, "Active subscriptions (%d):", len(subs))
	for i := range subs {
		sub := &subs[i]
		if sub.Advance(now) {
			if err := h.storage.UpdateSubscription(ctx, sub); err != nil {
				return model.Confirmation{}, fmt.Errorf("failed to roll forward %s: %w", sub.Name, err)
			}
		}
		monthly = monthly.Add(sub.MonthlyCost())
		fmt.Fprintf(&b, "\n  %s: %s %s per %s, next charge %s",
			sub.Name, sub.Cost.StringFixed(2), sub.Currency, cycleLabel(sub),
			sub.NextCharge.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "\nCombined monthly cost: %s.", monthly.StringFixed(2))

	return model.Confirmation{Subscriptions: subs, Text: b.String()}, nil
}

func cycleLabel(sub *model.Subscription) string {
	switch sub.Cycle {
	case model.CycleMonthly:
		return "month"
	case model.CycleYearly:
		return "year"
	default:
		return fmt.Sprintf("%d days", sub.CycleDays)
	}
}
