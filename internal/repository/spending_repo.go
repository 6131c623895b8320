package repository

import (
	"context"
	"fmt"
	"strings"

	"finance_tracker/internal/model"
)

type spendingRepository struct {
	db DBTX
}

// NewSpendingRepository creates a PostgreSQL SpendingRepository
func NewSpendingRepository(db DBTX) SpendingRepository {
	return &spendingRepository{db: db}
}

// Create inserts a new ledger entry
func (r *spendingRepository) Create(ctx context.Context, s *model.Spending) error {
	sql := `INSERT INTO spendings (id, user_id, amount, type, category, description, date, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, sql, s.ID, s.UserID, s.Amount, s.Type, s.Category, s.Description, s.Date, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create spending: %w", err)
	}
	return nil
}

// FindByUser retrieves a user's entries with optional filters, newest first
func (r *spendingRepository) FindByUser(ctx context.Context, userID string, filter model.SpendingFilter) ([]model.Spending, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, user_id, amount::float8, type, category, description, date, created_at
                               FROM spendings WHERE user_id = $1`)
	args := []any{userID}
	argCount := 2

	if filter.Type != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND type = $%d", argCount))
		args = append(args, filter.Type)
		argCount++
	}
	if !filter.Since.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND date >= $%d", argCount))
		args = append(args, filter.Since)
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY date DESC, created_at DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spendings by user: %w", err)
	}
	defer rows.Close()

	spendings := []model.Spending{}
	for rows.Next() {
		var s model.Spending
		if err := rows.Scan(&s.ID, &s.UserID, &s.Amount, &s.Type, &s.Category, &s.Description, &s.Date, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		spendings = append(spendings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spending rows: %w", err)
	}
	return spendings, nil
}
