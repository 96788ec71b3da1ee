package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/majordomo/internal/model"
)

// SaveRecord inserts one accounting record.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *model.AccountingRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, user_id, kind, amount, currency, category, note, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.UserID,
		string(record.Kind),
		record.Amount.String(),
		record.Currency,
		record.Category,
		record.Note,
		record.OccurredAt,
		record.CreatedAt,
	)
	if err != nil {
		return wrapQueryError("save record", err)
	}
	return nil
}

// GetRecordsByPeriod returns a user's records with start <= occurred_at < end,
// oldest first.
func (s *SQLiteStorage) GetRecordsByPeriod(ctx context.Context, userID string, start, end time.Time) ([]model.AccountingRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %v is before start %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount, currency, category, note, occurred_at, created_at
		FROM records
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at
	`, userID, start, end)
	if err != nil {
		return nil, wrapQueryError("query records", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AccountingRecord
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.AccountingRecord, error) {
	var (
		record model.AccountingRecord
		kind   string
		amount string
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&kind,
		&amount,
		&record.Currency,
		&record.Category,
		&record.Note,
		&record.OccurredAt,
		&record.CreatedAt,
	)
	if err != nil {
		return model.AccountingRecord{}, fmt.Errorf("failed to scan record: %w", err)
	}

	record.Kind = model.RecordKind(kind)
	record.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return model.AccountingRecord{}, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	return record, nil
}
