// Package repository persists the domain models. Every repository has a
// PostgreSQL implementation (pgx) and a MongoDB implementation; both share the
// same interfaces so the services never know which store is active.
//
// Lookups by id return (nil, nil) when nothing matches; the service layer
// decides whether that is an error.
package repository

import (
	"context"
	"errors"
	"time"

	"finance_tracker/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by writes that target a record which no longer exists.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint (such as a user's email) is violated.
var ErrDuplicate = errors.New("duplicate record")

// DBTX is the subset of pgxpool.Pool the repositories use. It is satisfied by
// *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	ListAdvisors(ctx context.Context) ([]model.User, error)
	ListClients(ctx context.Context, advisorID string) ([]model.User, error)
	// AssignAdvisor sets the user's advisor only if none is assigned yet and
	// reports whether the write happened.
	AssignAdvisor(ctx context.Context, userID, advisorID string) (bool, error)
}

// CardRepository defines operations for card data
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	FindByID(ctx context.Context, id string) (*model.Card, error)
	ListByUser(ctx context.Context, userID string) ([]model.Card, error)
	Delete(ctx context.Context, id string) error
}

// SpendingRepository defines operations for ledger entries
type SpendingRepository interface {
	Create(ctx context.Context, spending *model.Spending) error
	// FindByUser returns matching entries, newest first.
	FindByUser(ctx context.Context, userID string, filter model.SpendingFilter) ([]model.Spending, error)
}

// AdvisorRequestFilter narrows a request listing. Empty fields are ignored.
type AdvisorRequestFilter struct {
	UserID    string
	AdvisorID string
	Status    model.RequestStatus
}

// AdvisorRequestRepository defines operations for advisor requests
type AdvisorRequestRepository interface {
	Create(ctx context.Context, req *model.AdvisorRequest) error
	FindByID(ctx context.Context, id string) (*model.AdvisorRequest, error)
	FindPending(ctx context.Context, userID, advisorID string) (*model.AdvisorRequest, error)
	// List returns matching requests, newest first.
	List(ctx context.Context, filter AdvisorRequestFilter) ([]model.AdvisorRequest, error)
	// Transition moves a request from one status to another and stamps
	// respondedAt. It reports false if the request was not in status from.
	Transition(ctx context.Context, id string, from, to model.RequestStatus, at time.Time) (bool, error)
	// DeclinePendingForUser declines every pending request of the user except exceptID.
	DeclinePendingForUser(ctx context.Context, userID, exceptID string, at time.Time) (int64, error)
	// DeletePending removes a request that is still pending and owned by userID.
	DeletePending(ctx context.Context, id, userID string) (bool, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
