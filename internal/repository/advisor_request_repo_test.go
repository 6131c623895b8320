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

const requestID = "65a1f0c2e4b0a1b2c3d4e700"

func TestAdvisorRequestRepository_Transition(t *testing.T) {
	mock := newMock(t)
	repo := NewAdvisorRequestRepository(mock)
	at := time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE advisor_requests SET status = $1, responded_at = $2 WHERE id = $3 AND status = $4`)).
		WithArgs(model.RequestApproved, at, requestID, model.RequestPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.Transition(context.Background(), requestID, model.RequestPending, model.RequestApproved, at)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisorRequestRepository_Transition_LostRace(t *testing.T) {
	mock := newMock(t)
	repo := NewAdvisorRequestRepository(mock)
	at := time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE advisor_requests SET status`)).
		WithArgs(model.RequestDeclined, at, requestID, model.RequestPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Transition(context.Background(), requestID, model.RequestPending, model.RequestDeclined, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvisorRequestRepository_DeclinePendingForUser(t *testing.T) {
	mock := newMock(t)
	repo := NewAdvisorRequestRepository(mock)
	at := time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE user_id = $3 AND status = $4 AND id <> $5`)).
		WithArgs(model.RequestDeclined, at, userID, model.RequestPending, requestID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := repo.DeclinePendingForUser(context.Background(), userID, requestID, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisorRequestRepository_DeletePending(t *testing.T) {
	mock := newMock(t)
	repo := NewAdvisorRequestRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM advisor_requests WHERE id = $1 AND user_id = $2 AND status = $3`)).
		WithArgs(requestID, userID, model.RequestPending).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ok, err := repo.DeletePending(context.Background(), requestID, userID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvisorRequestRepository_List_FiltersByAdvisorAndStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewAdvisorRequestRepository(mock)
	requested := time.Date(2026, 10, 4, 8, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "user_id", "advisor_id", "status", "message", "requested_at", "responded_at"}).
		AddRow(requestID, userID, advisorID, model.RequestPending, "help with budget", requested, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM advisor_requests WHERE advisor_id = $1 AND status = $2 ORDER BY requested_at DESC`)).
		WithArgs(advisorID, model.RequestPending).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), AdvisorRequestFilter{AdvisorID: advisorID, Status: model.RequestPending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, userID, got[0].UserID)
	assert.Nil(t, got[0].RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
