package repository

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/model"

	"github.com/jackc/pgx/v5"
)

const cardColumns = `id, user_id, holder_name, type, brand, last4, masked, encrypted_number, encrypted_iv, encrypted_tag,
            expiry_month, expiry_year, color_theme, notes, created_at`

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a PostgreSQL CardRepository
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

func scanCard(row pgx.Row, c *model.Card) error {
	var number, iv, tag *string
	err := row.Scan(&c.ID, &c.UserID, &c.HolderName, &c.Type, &c.Brand, &c.Last4, &c.Masked,
		&number, &iv, &tag, &c.ExpiryMonth, &c.ExpiryYear, &c.ColorTheme, &c.Notes, &c.CreatedAt)
	if err != nil {
		return err
	}
	if number != nil && iv != nil && tag != nil {
		c.Envelope = &model.CardEnvelope{Number: *number, IV: *iv, Tag: *tag}
	}
	return nil
}

// Create inserts a new card. The envelope columns are written together or not at all.
func (r *cardRepository) Create(ctx context.Context, c *model.Card) error {
	var number, iv, tag *string
	if c.Envelope != nil {
		number, iv, tag = &c.Envelope.Number, &c.Envelope.IV, &c.Envelope.Tag
	}
	sql := `INSERT INTO cards (` + cardColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(ctx, sql, c.ID, c.UserID, c.HolderName, c.Type, c.Brand, c.Last4, c.Masked,
		number, iv, tag, c.ExpiryMonth, c.ExpiryYear, c.ColorTheme, c.Notes, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// FindByID retrieves a card by its ID
func (r *cardRepository) FindByID(ctx context.Context, id string) (*model.Card, error) {
	c := &model.Card{}
	sql := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if err := scanCard(r.db.QueryRow(ctx, sql, id), c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find card by ID: %w", err)
	}
	return c, nil
}

// ListByUser returns a user's cards, newest first
func (r *cardRepository) ListByUser(ctx context.Context, userID string) ([]model.Card, error) {
	sql := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards by user: %w", err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		var c model.Card
		if err := scanCard(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return cards, nil
}

// Delete removes a card from the database
func (r *cardRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
