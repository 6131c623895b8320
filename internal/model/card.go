package model

import "time"

const (
	CardTypeCredit = "credit"
	CardTypeDebit  = "debit"

	DefaultCardBrand = "Unknown"
	DefaultCardColor = "#4fd4c6"
)

// CardEnvelope is the encrypted card number. The three parts only exist
// together; a card without an envelope is a legacy record that cannot be revealed.
type CardEnvelope struct {
	Number string `bson:"encrypted_number"`
	IV     string `bson:"encrypted_iv"`
	Tag    string `bson:"encrypted_tag"`
}

// Card is a stored payment card. The raw card number is never part of it.
type Card struct {
	ID          string        `json:"id" bson:"_id"`
	UserID      string        `json:"-" bson:"user"`
	HolderName  string        `json:"holderName" bson:"holder_name"`
	Type        string        `json:"type" bson:"type"`
	Brand       string        `json:"brand" bson:"brand"`
	Last4       string        `json:"last4" bson:"last4"`
	Masked      string        `json:"masked" bson:"masked"`
	Envelope    *CardEnvelope `json:"-" bson:"envelope,omitempty"`
	ExpiryMonth int           `json:"expiryMonth" bson:"expiry_month"`
	ExpiryYear  int           `json:"expiryYear" bson:"expiry_year"`
	ColorTheme  string        `json:"colorTheme" bson:"color_theme"`
	Notes       *string       `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
}

// Encrypted reports whether the card carries a complete envelope.
func (c *Card) Encrypted() bool {
	return c.Envelope != nil && c.Envelope.Number != "" && c.Envelope.IV != "" && c.Envelope.Tag != ""
}

// CreateCardRequest is used for adding a new card
type CreateCardRequest struct {
	HolderName  string  `json:"holderName" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Brand       string  `json:"brand"`
	CardNumber  string  `json:"cardNumber" binding:"required"`
	ExpiryMonth int     `json:"expiryMonth" binding:"required,min=1,max=12"`
	ExpiryYear  int     `json:"expiryYear" binding:"required"`
	ColorTheme  string  `json:"colorTheme"`
	Notes       *string `json:"notes"`
}

// RevealCardRequest carries the re-authentication password.
type RevealCardRequest struct {
	Password string `json:"password"`
}
