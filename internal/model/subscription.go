package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle is how often a subscription charges.
type BillingCycle string

// Billing cycles. CycleCustom uses Subscription.CycleDays.
const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
	CycleCustom  BillingCycle = "custom"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

// Subscription statuses.
const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a recurring charge tracked for a user.
type Subscription struct {
	NextCharge time.Time
	CreatedAt  time.Time
	ID         string
	UserID     string
	Name       string
	Currency   string
	Cycle      BillingCycle
	Status     SubscriptionStatus
	Cost       decimal.Decimal
	CycleDays  int
}

// NextAfter returns the charge date one cycle after from.
func (s Subscription) NextAfter(from time.Time) time.Time {
	switch s.Cycle {
	case CycleYearly:
		return from.AddDate(1, 0, 0)
	case CycleCustom:
		days := s.CycleDays
		if days <= 0 {
			days = 30
		}
		return from.AddDate(0, 0, days)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// Advance rolls NextCharge forward cycle by cycle until it is after now.
// It reports whether the date moved. Only active subscriptions advance;
// the next-charge invariant does not apply once cancelled.
func (s *Subscription) Advance(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	moved := false
	for !s.NextCharge.After(now) {
		s.NextCharge = s.NextAfter(s.NextCharge)
		moved = true
	}
	return moved
}

// MonthlyCost converts the subscription cost to a monthly equivalent.
func (s Subscription) MonthlyCost() decimal.Decimal {
	switch s.Cycle {
	case CycleYearly:
		return s.Cost.Div(decimal.NewFromInt(12))
	case CycleCustom:
		days := s.CycleDays
		if days <= 0 {
			days = 30
		}
		// Average month length in days.
		return s.Cost.Mul(decimal.NewFromFloat(30.44)).Div(decimal.NewFromInt(int64(days)))
	default:
		return s.Cost
	}
}
