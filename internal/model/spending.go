package model

import "time"

const (
	SpendingTypeIncome  = "income"
	SpendingTypeExpense = "expense"

	DefaultSpendingCategory = "general"
)

// Spending represents a single income or expense ledger entry
type Spending struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user" bson:"user"`
	Amount      float64   `json:"amount" bson:"amount"`
	Type        string    `json:"type" bson:"type"` // "income" or "expense"
	Category    string    `json:"category" bson:"category"`
	Description *string   `json:"description,omitempty" bson:"description,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// CreateSpendingRequest is used for logging a new ledger entry
type CreateSpendingRequest struct {
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Type        string     `json:"type" binding:"required,oneof=income expense"`
	Category    string     `json:"category"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

// SpendingFilter narrows a ledger query. Zero values mean "no constraint".
type SpendingFilter struct {
	Type  string
	Since time.Time
	Limit int
}
