package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNextAfter(t *testing.T) {
	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	monthly := Subscription{Cycle: CycleMonthly}
	assert.Equal(t, time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC), monthly.NextAfter(from))

	yearly := Subscription{Cycle: CycleYearly}
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), yearly.NextAfter(from))

	custom := Subscription{Cycle: CycleCustom, CycleDays: 14}
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), custom.NextAfter(from))
}

func TestAdvance(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("future charge does not move", func(t *testing.T) {
		sub := Subscription{Cycle: CycleMonthly, Status: SubscriptionActive, NextCharge: now.AddDate(0, 0, 10)}
		assert.False(t, sub.Advance(now))
	})

	t.Run("lapsed charge rolls past now", func(t *testing.T) {
		sub := Subscription{Cycle: CycleMonthly, Status: SubscriptionActive, NextCharge: now.AddDate(0, -3, 0)}
		assert.True(t, sub.Advance(now))
		assert.True(t, sub.NextCharge.After(now))
		// One cycle at most beyond now.
		assert.False(t, sub.NextCharge.After(now.AddDate(0, 1, 0)))
	})

	t.Run("cancelled subscriptions never move", func(t *testing.T) {
		charge := now.AddDate(0, -1, 0)
		sub := Subscription{Cycle: CycleMonthly, Status: SubscriptionCancelled, NextCharge: charge}
		assert.False(t, sub.Advance(now))
		assert.True(t, charge.Equal(sub.NextCharge))
	})
}

func TestMonthlyCost(t *testing.T) {
	monthly := Subscription{Cycle: CycleMonthly, Cost: decimal.NewFromInt(45)}
	assert.True(t, decimal.NewFromInt(45).Equal(monthly.MonthlyCost()))

	yearly := Subscription{Cycle: CycleYearly, Cost: decimal.NewFromInt(120)}
	assert.True(t, decimal.NewFromInt(10).Equal(yearly.MonthlyCost()))

	weekly := Subscription{Cycle: CycleCustom, CycleDays: 7, Cost: decimal.NewFromInt(7)}
	// 7 * 30.44 / 7 = 30.44 per month.
	assert.True(t, decimal.NewFromFloat(30.44).Equal(weekly.MonthlyCost()))
}
