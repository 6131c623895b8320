package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finance_tracker/internal/cache"
	"finance_tracker/internal/logger"
	"finance_tracker/internal/model"
	"finance_tracker/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultSummaryWeeks = 5
	MaxSummaryWeeks     = 12
	DefaultRecentLimit  = 50
	MaxRecentLimit      = 200
	DefaultDistribDays  = 30
	MaxDistribDays      = 365
)

// SpendingService records ledger entries and builds reports over them.
type SpendingService interface {
	Create(ctx context.Context, caller model.Caller, req model.CreateSpendingRequest) (*model.Spending, error)
	WeeklySummary(ctx context.Context, caller model.Caller, weeks int) ([]model.WeekBucket, error)
	Recent(ctx context.Context, caller model.Caller, limit int) ([]model.Spending, error)
	CategoryDistribution(ctx context.Context, caller model.Caller, days int) (*model.CategoryDistribution, error)
}

type spendingService struct {
	repo    repository.SpendingRepository
	reports cache.ReportCache
	now     func() time.Time
}

// NewSpendingService creates a new SpendingService
func NewSpendingService(repo repository.SpendingRepository, reports cache.ReportCache) SpendingService {
	return &spendingService{repo: repo, reports: reports, now: time.Now}
}

// clamp pins v into [1, max]. Callers resolve a missing parameter to its
// default before calling the service.
func clamp(v, max int) int {
	switch {
	case v < 1:
		return 1
	case v > max:
		return max
	}
	return v
}

func (s *spendingService) Create(ctx context.Context, caller model.Caller, req model.CreateSpendingRequest) (*model.Spending, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	// Both stores must hold the same value; postgres keeps two decimals.
	if amount := decimal.NewFromFloat(req.Amount); !amount.Equal(amount.Round(2)) {
		return nil, ErrAmountPrecision
	}
	if req.Type != model.SpendingTypeIncome && req.Type != model.SpendingTypeExpense {
		return nil, ErrInvalidSpendingType
	}

	now := s.now().UTC()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.DefaultSpendingCategory
	}

	spending := &model.Spending{
		ID:          model.NewID(),
		UserID:      ownerID,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    category,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, spending); err != nil {
		return nil, fmt.Errorf("failed to create spending: %w", err)
	}
	s.reports.Invalidate(ctx, ownerID)
	return spending, nil
}

func (s *spendingService) WeeklySummary(ctx context.Context, caller model.Caller, weeks int) ([]model.WeekBucket, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	weeks = clamp(weeks, MaxSummaryWeeks)

	field := "weekly:" + strconv.Itoa(weeks)
	var buckets []model.WeekBucket
	if s.cached(ctx, ownerID, field, &buckets) {
		return buckets, nil
	}

	now := s.now()
	entries, err := s.repo.FindByUser(ctx, ownerID, model.SpendingFilter{Since: EarliestWeekStart(now, weeks)})
	if err != nil {
		return nil, fmt.Errorf("failed to load spendings: %w", err)
	}
	buckets = BuildWeeklySummary(entries, now, weeks)
	s.store(ctx, ownerID, field, buckets)
	return buckets, nil
}

func (s *spendingService) Recent(ctx context.Context, caller model.Caller, limit int) ([]model.Spending, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	limit = clamp(limit, MaxRecentLimit)

	entries, err := s.repo.FindByUser(ctx, ownerID, model.SpendingFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to load spendings: %w", err)
	}
	return entries, nil
}

func (s *spendingService) CategoryDistribution(ctx context.Context, caller model.Caller, days int) (*model.CategoryDistribution, error) {
	ownerID, err := model.ParseID(caller.UserID)
	if err != nil {
		return nil, err
	}
	days = clamp(days, MaxDistribDays)

	field := "distribution:" + strconv.Itoa(days)
	var dist model.CategoryDistribution
	if s.cached(ctx, ownerID, field, &dist) {
		return &dist, nil
	}

	since := s.now().UTC().AddDate(0, 0, -days)
	entries, err := s.repo.FindByUser(ctx, ownerID, model.SpendingFilter{
		Type:  model.SpendingTypeExpense,
		Since: since,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load spendings: %w", err)
	}
	result := BuildCategoryDistribution(entries, days)
	s.store(ctx, ownerID, field, result)
	return result, nil
}

func (s *spendingService) cached(ctx context.Context, ownerID, field string, dst any) bool {
	data, ok := s.reports.Get(ctx, ownerID, field)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Get().Warn("discarding unreadable cached report", zap.String("field", field), zap.Error(err))
		return false
	}
	return true
}

func (s *spendingService) store(ctx context.Context, ownerID, field string, report any) {
	data, err := json.Marshal(report)
	if err != nil {
		logger.Get().Warn("report not cached", zap.String("field", field), zap.Error(err))
		return
	}
	s.reports.Put(ctx, ownerID, field, data)
}
