package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"finance_tracker/internal/model"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var spendingColumnNames = []string{"id", "user_id", "amount", "type", "category", "description", "date", "created_at"}

func TestSpendingRepository_FindByUser_WithFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewSpendingRepository(mock)
	since := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(spendingColumnNames).
		AddRow("65a1f0c2e4b0a1b2c3d4e800", userID, 42.5, model.SpendingTypeExpense, "Dining", nil, date, date)
	mock.ExpectQuery(regexp.QuoteMeta(`AND type = $2 AND date >= $3 ORDER BY date DESC, created_at DESC LIMIT $4`)).
		WithArgs(userID, model.SpendingTypeExpense, since, 10).
		WillReturnRows(rows)

	got, err := repo.FindByUser(context.Background(), userID, model.SpendingFilter{
		Type: model.SpendingTypeExpense, Since: since, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 42.5, got[0].Amount)
	assert.Equal(t, "Dining", got[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendingRepository_FindByUser_NoFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewSpendingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 ORDER BY date DESC, created_at DESC`)).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(spendingColumnNames))

	got, err := repo.FindByUser(context.Background(), userID, model.SpendingFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSpendingRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewSpendingRepository(mock)
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	s := &model.Spending{
		ID: "65a1f0c2e4b0a1b2c3d4e801", UserID: userID, Amount: 12, Type: model.SpendingTypeIncome,
		Category: "Salary", Date: now, CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO spendings`)).
		WithArgs(s.ID, userID, 12.0, model.SpendingTypeIncome, "Salary", (*string)(nil), now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}
