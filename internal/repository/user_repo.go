package repository

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/model"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password_hash, role, status, assigned_advisor, advisor_profile, is_approved, created_at`

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a PostgreSQL UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&u.AssignedAdvisor, &u.AdvisorProfile, &u.IsApproved, &u.CreatedAt)
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (` + userColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, sql, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Status,
		user.AssignedAdvisor, user.AdvisorProfile, user.IsApproved, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by their email address
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, email), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, id), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// ListAdvisors returns every advisor, newest first
func (r *userRepository) ListAdvisors(ctx context.Context) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`
	return r.queryUsers(ctx, sql, model.RoleAdvisor)
}

// ListClients returns the users assigned to an advisor, newest first
func (r *userRepository) ListClients(ctx context.Context, advisorID string) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE assigned_advisor = $1 AND role = $2 ORDER BY created_at DESC`
	return r.queryUsers(ctx, sql, advisorID, model.RoleUser)
}

func (r *userRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]model.User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// AssignAdvisor sets assigned_advisor only while it is still NULL
func (r *userRepository) AssignAdvisor(ctx context.Context, userID, advisorID string) (bool, error) {
	sql := `UPDATE users SET assigned_advisor = $1 WHERE id = $2 AND assigned_advisor IS NULL`
	tag, err := r.db.Exec(ctx, sql, advisorID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to assign advisor: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
