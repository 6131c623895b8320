package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance_tracker/internal/model"

	"github.com/jackc/pgx/v5"
)

const advisorRequestColumns = `id, user_id, advisor_id, status, message, requested_at, responded_at`

type advisorRequestRepository struct {
	db DBTX
}

// NewAdvisorRequestRepository creates a PostgreSQL AdvisorRequestRepository
func NewAdvisorRequestRepository(db DBTX) AdvisorRequestRepository {
	return &advisorRequestRepository{db: db}
}

func scanAdvisorRequest(row pgx.Row, req *model.AdvisorRequest) error {
	return row.Scan(&req.ID, &req.UserID, &req.AdvisorID, &req.Status, &req.Message, &req.RequestedAt, &req.RespondedAt)
}

func (r *advisorRequestRepository) Create(ctx context.Context, req *model.AdvisorRequest) error {
	sql := `INSERT INTO advisor_requests (` + advisorRequestColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, sql, req.ID, req.UserID, req.AdvisorID, req.Status, req.Message, req.RequestedAt, req.RespondedAt)
	if err != nil {
		return fmt.Errorf("failed to create advisor request: %w", err)
	}
	return nil
}

func (r *advisorRequestRepository) FindByID(ctx context.Context, id string) (*model.AdvisorRequest, error) {
	return r.findOne(ctx, `SELECT `+advisorRequestColumns+` FROM advisor_requests WHERE id = $1`, id)
}

func (r *advisorRequestRepository) FindPending(ctx context.Context, userID, advisorID string) (*model.AdvisorRequest, error) {
	sql := `SELECT ` + advisorRequestColumns + ` FROM advisor_requests
            WHERE user_id = $1 AND advisor_id = $2 AND status = $3 LIMIT 1`
	return r.findOne(ctx, sql, userID, advisorID, model.RequestPending)
}

func (r *advisorRequestRepository) findOne(ctx context.Context, sql string, args ...any) (*model.AdvisorRequest, error) {
	req := &model.AdvisorRequest{}
	if err := scanAdvisorRequest(r.db.QueryRow(ctx, sql, args...), req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find advisor request: %w", err)
	}
	return req, nil
}

func (r *advisorRequestRepository) List(ctx context.Context, filter AdvisorRequestFilter) ([]model.AdvisorRequest, error) {
	var conditions []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.UserID != "" {
		add("user_id", filter.UserID)
	}
	if filter.AdvisorID != "" {
		add("advisor_id", filter.AdvisorID)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + advisorRequestColumns + ` FROM advisor_requests`)
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY requested_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query advisor requests: %w", err)
	}
	defer rows.Close()

	requests := []model.AdvisorRequest{}
	for rows.Next() {
		var req model.AdvisorRequest
		if err := scanAdvisorRequest(rows, &req); err != nil {
			return nil, fmt.Errorf("failed to scan advisor request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advisor request rows: %w", err)
	}
	return requests, nil
}

func (r *advisorRequestRepository) Transition(ctx context.Context, id string, from, to model.RequestStatus, at time.Time) (bool, error) {
	sql := `UPDATE advisor_requests SET status = $1, responded_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.db.Exec(ctx, sql, to, at, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update advisor request status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *advisorRequestRepository) DeclinePendingForUser(ctx context.Context, userID, exceptID string, at time.Time) (int64, error) {
	sql := `UPDATE advisor_requests SET status = $1, responded_at = $2
            WHERE user_id = $3 AND status = $4 AND id <> $5`
	tag, err := r.db.Exec(ctx, sql, model.RequestDeclined, at, userID, model.RequestPending, exceptID)
	if err != nil {
		return 0, fmt.Errorf("failed to decline pending advisor requests: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *advisorRequestRepository) DeletePending(ctx context.Context, id, userID string) (bool, error) {
	sql := `DELETE FROM advisor_requests WHERE id = $1 AND user_id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, sql, id, userID, model.RequestPending)
	if err != nil {
		return false, fmt.Errorf("failed to delete advisor request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
