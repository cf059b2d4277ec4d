package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

// Category groups transactions and budgets. A category with no UserID is a
// shared default, visible to every user and mutable by none.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *string    `json:"user_id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Color     string     `json:"color"`
	Icon      string     `json:"icon"`
	IsDefault bool       `json:"is_default"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Category) Owner() (string, bool) {
	if c.UserID == nil {
		return "", false
	}
	return *c.UserID, true
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (c *Category) Validate() error {
	if c.Name == "" || len(c.Name) > 100 {
		return financeErrors.NewValidationError("Name must be between 1 and 100 characters")
	}
	if !IsValidTransactionType(c.Type) {
		return financeErrors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return financeErrors.NewValidationError("Color must be a hex value like #22C55E")
	}
	return nil
}

type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	// UpsertDefault inserts a shared default category or updates it in place
	// when one with the same name already exists.
	UpsertDefault(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, categoryID uuid.UUID) (*Category, error)
	FindDefaultByName(ctx context.Context, name string) (*Category, error)
	// FindVisible returns the user's own active categories plus the defaults.
	FindVisible(ctx context.Context, userID string) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	SoftDelete(ctx context.Context, categoryID uuid.UUID) error
	Restore(ctx context.Context, categoryID uuid.UUID) error
}
