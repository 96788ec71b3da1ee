package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
)

const subscriptionColumns = `id, user_id, name, cost, currency, cycle, cycle_days, status, next_charge, created_at`

// SaveSubscription inserts one subscription.
func (s *SQLiteStorage) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID,
		sub.UserID,
		sub.Name,
		sub.Cost.String(),
		sub.Currency,
		string(sub.Cycle),
		sub.CycleDays,
		string(sub.Status),
		sub.NextCharge,
		sub.CreatedAt,
	)
	if err != nil {
		return wrapQueryError("save subscription", err)
	}
	return nil
}

// UpdateSubscription rewrites the mutable fields of an existing subscription.
func (s *SQLiteStorage) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET name = ?, cost = ?, currency = ?, cycle = ?, cycle_days = ?, status = ?, next_charge = ?
		WHERE id = ?
	`,
		sub.Name,
		sub.Cost.String(),
		sub.Currency,
		string(sub.Cycle),
		sub.CycleDays,
		string(sub.Status),
		sub.NextCharge,
		sub.ID,
	)
	if err != nil {
		return wrapQueryError("update subscription", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: subscription %s", common.ErrNotFound, sub.ID)
	}
	return nil
}

// GetSubscriptionByID returns one subscription by its identifier.
func (s *SQLiteStorage) GetSubscriptionByID(ctx context.Context, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?
	`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subscription %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscriptions returns a user's subscriptions, optionally filtered by
// status (empty status means all), soonest charge first.
func (s *SQLiteStorage) GetSubscriptions(ctx context.Context, userID string, status model.SubscriptionStatus) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY next_charge`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError("query subscriptions", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSubscriptions(rows)
}

// FindSubscriptionsByName returns a user's subscriptions whose name
// contains the given fragment, case-insensitively.
func (s *SQLiteStorage) FindSubscriptionsByName(ctx context.Context, userID, name string) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = ? AND name LIKE ? COLLATE NOCASE
		ORDER BY next_charge
	`, userID, "%"+name+"%")
	if err != nil {
		return nil, wrapQueryError("find subscriptions", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSubscriptions(rows)
}

func collectSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row rowScanner) (model.Subscription, error) {
	var (
		sub    model.Subscription
		cost   string
		cycle  string
		status string
	)
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&cost,
		&sub.Currency,
		&cycle,
		&sub.CycleDays,
		&status,
		&sub.NextCharge,
		&sub.CreatedAt,
	)
	if err != nil {
		return model.Subscription{}, err
	}

	sub.Cycle = model.BillingCycle(cycle)
	sub.Status = model.SubscriptionStatus(status)
	sub.Cost, err = decimal.NewFromString(cost)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("failed to parse cost %q: %w", cost, err)
	}
	return sub, nil
}
