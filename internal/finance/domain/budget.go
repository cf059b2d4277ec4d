package domain

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"

	defaultAlertThreshold = 80
)

type Budget struct {
	ID             uuid.UUID  `json:"id"`
	UserID         string     `json:"user_id"`
	CategoryID     *uuid.UUID `json:"category_id"`
	Name           string     `json:"name"`
	Amount         float64    `json:"amount"`
	Period         string     `json:"period"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	AlertThreshold int        `json:"alert_threshold"`
	IsActive       bool       `json:"is_active"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (b *Budget) Owner() (string, bool) {
	return b.UserID, b.UserID != ""
}

func IsValidBudgetPeriod(period string) bool {
	return period == PeriodWeekly || period == PeriodMonthly || period == PeriodYearly
}

func (b *Budget) RoundToTwoDecimalPlaces() {
	b.Amount = math.Round(b.Amount*100) / 100
}

func (b *Budget) Validate() error {
	if b.Name == "" || len(b.Name) > 100 {
		return financeErrors.NewValidationError("Name must be between 1 and 100 characters")
	}
	if b.Amount <= 0 || b.Amount >= maxAmount {
		return financeErrors.NewValidationError("Amount must be positive and within the supported range")
	}
	if !IsValidBudgetPeriod(b.Period) {
		return financeErrors.NewValidationError("Period must be 'weekly', 'monthly' or 'yearly'")
	}
	if b.StartDate.IsZero() {
		return financeErrors.NewValidationError("Start date is required")
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return financeErrors.NewValidationError("End date must not be before start date")
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = defaultAlertThreshold
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return financeErrors.NewValidationError("Alert threshold must be between 1 and 100")
	}
	return nil
}

// CurrentPeriodStart returns the start of the period window containing now.
// Weekly windows start on Monday, monthly on the 1st, yearly on Jan 1.
func (b *Budget) CurrentPeriodStart(now time.Time) time.Time {
	switch b.Period {
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	case PeriodYearly:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

type BudgetRepository interface {
	Save(ctx context.Context, budget *Budget) error
	FindByID(ctx context.Context, budgetID uuid.UUID) (*Budget, error)
	FindByUser(ctx context.Context, userID string) ([]Budget, error)
	FindAllActive(ctx context.Context) ([]Budget, error)
	Update(ctx context.Context, budget *Budget) error
	SoftDelete(ctx context.Context, budgetID uuid.UUID) error
	Restore(ctx context.Context, budgetID uuid.UUID) error
}
