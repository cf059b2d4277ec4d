package domain

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"

	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// maxAmount keeps amounts inside NUMERIC(12,2): 10 integer digits, 2 fraction digits.
const maxAmount = 1e10

type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	Status      string     `json:"status"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Transaction) Owner() (string, bool) {
	return t.UserID, t.UserID != ""
}

func IsValidTransactionType(transactionType string) bool {
	return transactionType == TypeIncome || transactionType == TypeExpense
}

func IsValidTransactionStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// RoundToTwoDecimalPlaces normalizes the amount before validation so that the
// stored value is exactly representable in NUMERIC(12,2).
func (t *Transaction) RoundToTwoDecimalPlaces() {
	t.Amount = math.Round(t.Amount*100) / 100
}

func (t *Transaction) Validate() error {
	if !IsValidTransactionType(t.Type) {
		return financeErrors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if t.Status == "" {
		t.Status = StatusCompleted
	}
	if !IsValidTransactionStatus(t.Status) {
		return financeErrors.NewValidationError("Status must be 'pending', 'completed', 'cancelled' or 'failed'")
	}
	if math.Abs(t.Amount) >= maxAmount {
		return financeErrors.NewValidationError("Amount exceeds the supported range")
	}
	if len(t.Description) > 200 {
		return financeErrors.NewValidationError("Description must be of length less than 200")
	}
	if t.Date.IsZero() {
		return financeErrors.NewValidationError("Date is required")
	}
	return nil
}

// TransactionFilter narrows listing queries. Zero values mean "no filter".
type TransactionFilter struct {
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Page      int
}

// CategoryTotal is one row of the per-category report.
type CategoryTotal struct {
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Type         string     `json:"type"`
	Total        float64    `json:"total"`
}

// TransactionRepository is the persistence port for transactions. FindByID
// returns soft-deleted rows too; the service decides whether a tombstoned row
// is visible for the requested action. All other queries exclude tombstoned
// rows unless stated otherwise.
type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction) error
	SaveWithTx(ctx context.Context, tx *sql.Tx, transaction *Transaction) error
	BeginTx(ctx context.Context) (*sql.Tx, error)
	FindByID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error)
	FindByUser(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, error)
	FindInDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]Transaction, error)
	Update(ctx context.Context, transaction *Transaction) error
	SoftDelete(ctx context.Context, transactionID uuid.UUID) error
	SoftDeleteBulk(ctx context.Context, userID string, transactionIDs []uuid.UUID) (int64, error)
	Restore(ctx context.Context, transactionID uuid.UUID) error
	ForceDelete(ctx context.Context, transactionID uuid.UUID) error
	SumByCategory(ctx context.Context, userID string, startDate, endDate time.Time, transactionType string) ([]CategoryTotal, error)
	SumExpensesForCategory(ctx context.Context, userID string, categoryID *uuid.UUID, startDate, endDate time.Time) (float64, error)
}
