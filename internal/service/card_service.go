package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance_tracker/internal/cache"
	"finance_tracker/internal/logger"
	"finance_tracker/internal/model"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/utils"

	"go.uber.org/zap"
)

// CardService manages a user's stored payment cards. Raw card numbers only
// exist in memory between validation and encryption, and again for the
// duration of a reveal.
type CardService interface {
	List(ctx context.Context, caller model.Caller) ([]model.Card, error)
	Create(ctx context.Context, caller model.Caller, req model.CreateCardRequest) (*model.Card, error)
	// Reveal re-checks the caller's password and returns the decrypted card number.
	Reveal(ctx context.Context, caller model.Caller, cardID, password string) (string, error)
	Delete(ctx context.Context, caller model.Caller, cardID string) error
}

type cardService struct {
	cards    repository.CardRepository
	users    repository.UserRepository
	envelope *utils.Envelope
	attempts cache.AttemptLimiter
	now      func() time.Time
}

// NewCardService creates a new CardService
func NewCardService(cards repository.CardRepository, users repository.UserRepository, envelope *utils.Envelope, attempts cache.AttemptLimiter) CardService {
	return &cardService{
		cards:    cards,
		users:    users,
		envelope: envelope,
		attempts: attempts,
		now:      time.Now,
	}
}

func (s *cardService) List(ctx context.Context, caller model.Caller) ([]model.Card, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (s *cardService) Create(ctx context.Context, caller model.Caller, req model.CreateCardRequest) (*model.Card, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}

	holder := strings.TrimSpace(req.HolderName)
	if holder == "" || req.CardNumber == "" || req.ExpiryMonth == 0 || req.ExpiryYear == 0 {
		return nil, ErrMissingCardFields
	}
	cardType := strings.ToLower(strings.TrimSpace(req.Type))
	if err := utils.ValidateCardType(cardType); err != nil {
		return nil, err
	}
	now := s.now()
	if err := utils.ValidateExpiry(req.ExpiryMonth, req.ExpiryYear, now); err != nil {
		return nil, err
	}
	digits, err := utils.ValidateCardNumber(req.CardNumber)
	if err != nil {
		return nil, err
	}

	sealed, err := s.envelope.Encrypt(digits)
	if err != nil {
		return nil, err
	}

	brand := strings.TrimSpace(req.Brand)
	if brand == "" {
		brand = model.DefaultCardBrand
	}
	color := strings.TrimSpace(req.ColorTheme)
	if color == "" {
		color = model.DefaultCardColor
	}

	card := &model.Card{
		ID:         model.NewID(),
		UserID:     ownerID,
		HolderName: holder,
		Type:       cardType,
		Brand:      brand,
		Last4:      utils.Last4(digits),
		Masked:     utils.MaskCardNumber(digits),
		Envelope: &model.CardEnvelope{
			Number: sealed.CipherText,
			IV:     sealed.IV,
			Tag:    sealed.Tag,
		},
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		ColorTheme:  color,
		Notes:       req.Notes,
		CreatedAt:   now.UTC(),
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return card, nil
}

func (s *cardService) Reveal(ctx context.Context, caller model.Caller, cardID, password string) (string, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return "", err
	}
	cardID, err = model.ParseID(cardID)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrPasswordRequired
	}

	// The password is checked before the card is loaded so a failed attempt
	// tells the caller nothing about the card.
	if s.attempts.Blocked(ctx, ownerID) {
		return "", ErrTooManyAttempts
	}
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.attempts.Fail(ctx, ownerID)
		logger.Get().Warn("card reveal rejected: bad password",
			zap.String("user_id", ownerID), zap.String("card_id", cardID))
		return "", ErrInvalidPassword
	}
	s.attempts.Reset(ctx, ownerID)

	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return "", fmt.Errorf("failed to load card: %w", err)
	}
	if card == nil {
		return "", ErrCardNotFound
	}
	if card.UserID != ownerID {
		logger.Get().Warn("card reveal rejected: not owner",
			zap.String("user_id", ownerID), zap.String("card_id", cardID))
		return "", ErrForbidden
	}
	if !card.Encrypted() {
		return "", ErrCardNotEncrypted
	}

	number, err := s.envelope.Decrypt(card.Envelope.Number, card.Envelope.IV, card.Envelope.Tag)
	if err != nil {
		logger.Get().Error("card reveal failed: envelope did not open",
			zap.String("user_id", ownerID), zap.String("card_id", cardID))
		return "", err
	}
	return number, nil
}

func (s *cardService) Delete(ctx context.Context, caller model.Caller, cardID string) error {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return err
	}
	cardID, err = model.ParseID(cardID)
	if err != nil {
		return err
	}

	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to load card: %w", err)
	}
	if card == nil {
		return ErrCardNotFound
	}
	if card.UserID != ownerID {
		return ErrForbidden
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCardNotFound
		}
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
