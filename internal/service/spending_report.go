package service

import (
	"sort"
	"time"

	"finance_tracker/internal/model"

	"github.com/shopspring/decimal"
)

const week = 7 * 24 * time.Hour

// categoryColors maps well-known categories to their chart color.
var categoryColors = map[string]string{
	"Groceries":     "#4caf50",
	"Transport":     "#2196f3",
	"Bills":         "#ff9800",
	"Shopping":      "#e91e63",
	"Dining":        "#9c27b0",
	"Entertainment": "#00bcd4",
	"Health":        "#f44336",
	"Education":     "#3f51b5",
	"Travel":        "#009688",
	"general":       "#607d8b",
}

const defaultCategoryColor = "#9e9e9e"

// CategoryColor returns the display color of a category.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return defaultCategoryColor
}

// StartOfWeek returns Monday 00:00 UTC of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// weekdayIndex numbers days Mon=0..Sun=6.
func weekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// EarliestWeekStart is the first Monday covered by a summary of weeks buckets.
func EarliestWeekStart(now time.Time, weeks int) time.Time {
	return StartOfWeek(now).AddDate(0, 0, -7*(weeks-1))
}

// BuildWeeklySummary groups entries into weeks Monday-aligned buckets, earliest
// first, ending with the week containing now. Entries outside the range are
// dropped.
func BuildWeeklySummary(entries []model.Spending, now time.Time, weeks int) []model.WeekBucket {
	earliest := EarliestWeekStart(now, weeks)

	type acc struct {
		income, expense decimal.Decimal
		daily           [7]decimal.Decimal
	}
	accs := make([]acc, weeks)

	for _, e := range entries {
		ws := StartOfWeek(e.Date)
		if ws.Before(earliest) {
			continue
		}
		idx := int(ws.Sub(earliest) / week)
		if idx >= weeks {
			continue
		}
		amount := decimal.NewFromFloat(e.Amount)
		day := weekdayIndex(e.Date)
		switch e.Type {
		case model.SpendingTypeIncome:
			accs[idx].income = accs[idx].income.Add(amount)
			accs[idx].daily[day] = accs[idx].daily[day].Add(amount)
		case model.SpendingTypeExpense:
			accs[idx].expense = accs[idx].expense.Add(amount)
			accs[idx].daily[day] = accs[idx].daily[day].Sub(amount)
		}
	}

	buckets := make([]model.WeekBucket, weeks)
	for i := range buckets {
		start := earliest.AddDate(0, 0, 7*i)
		b := model.WeekBucket{
			WeekStart: start,
			WeekEnd:   start.AddDate(0, 0, 7),
			Income:    accs[i].income.InexactFloat64(),
			Expense:   accs[i].expense.InexactFloat64(),
		}
		for d := range b.Daily {
			b.Daily[d] = accs[i].daily[d].InexactFloat64()
		}
		buckets[i] = b
	}
	return buckets
}

// BuildCategoryDistribution summarizes expense entries by category, largest
// first. Income entries are ignored.
func BuildCategoryDistribution(entries []model.Spending, days int) *model.CategoryDistribution {
	type acc struct {
		amount decimal.Decimal
		count  int
	}
	byCategory := map[string]*acc{}
	total := decimal.Zero
	count := 0

	for _, e := range entries {
		if e.Type != model.SpendingTypeExpense {
			continue
		}
		category := e.Category
		if category == "" {
			category = model.DefaultSpendingCategory
		}
		a, ok := byCategory[category]
		if !ok {
			a = &acc{}
			byCategory[category] = a
		}
		amount := decimal.NewFromFloat(e.Amount)
		a.amount = a.amount.Add(amount)
		a.count++
		total = total.Add(amount)
		count++
	}

	hundred := decimal.NewFromInt(100)
	categories := make([]model.CategoryShare, 0, len(byCategory))
	for name, a := range byCategory {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = a.amount.Mul(hundred).Div(total).Round(1)
		}
		categories = append(categories, model.CategoryShare{
			Category:   name,
			Amount:     a.amount.InexactFloat64(),
			Percentage: pct.InexactFloat64(),
			Count:      a.count,
			Color:      CategoryColor(name),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Amount != categories[j].Amount {
			return categories[i].Amount > categories[j].Amount
		}
		return categories[i].Category < categories[j].Category
	})

	dist := &model.CategoryDistribution{
		Total:      total.InexactFloat64(),
		Days:       days,
		Categories: categories,
	}
	if len(categories) > 0 {
		dist.Summary.TopCategory = categories[0].Category
		dist.Summary.TopAmount = categories[0].Amount
	}
	if count > 0 {
		dist.Summary.AveragePerTransaction = total.Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
	}
	return dist
}
