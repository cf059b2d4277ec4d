package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/infrastructure"
)

func newTestServices(categories ...domain.Category) (*TransactionService, *infrastructure.MockTransactionRepository, *infrastructure.MockCategoryRepository) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	categoryRepo := &infrastructure.MockCategoryRepository{Categories: categories}
	service := NewTransactionService(transactionRepo, NewCategoryService(categoryRepo))
	return service, transactionRepo, categoryRepo
}

func ownedCategory(userID string) domain.Category {
	return domain.Category{
		ID:     uuid.New(),
		UserID: &userID,
		Name:   "Groceries",
		Type:   domain.TypeExpense,
	}
}

func TestCreateTransaction_Valid(t *testing.T) {
	service, repo, _ := newTestServices()

	transaction := &domain.Transaction{
		UserID: "user-1",
		Type:   domain.TypeExpense,
		Amount: 10.999,
		Date:   time.Now(),
	}
	err := service.CreateTransaction(context.Background(), transaction)

	assert.NoError(t, err)
	assert.Len(t, repo.Transactions, 1)
	assert.Equal(t, 11.0, repo.Transactions[0].Amount)
	assert.Equal(t, domain.StatusCompleted, repo.Transactions[0].Status)
	assert.NotEqual(t, uuid.Nil, repo.Transactions[0].ID)
}

func TestCreateTransaction_InvalidType(t *testing.T) {
	service, repo, _ := newTestServices()

	err := service.CreateTransaction(context.Background(), &domain.Transaction{
		UserID: "user-1",
		Type:   "transfer",
		Amount: 5,
		Date:   time.Now(),
	})

	assert.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransaction_ForeignCategoryRejected(t *testing.T) {
	foreign := ownedCategory("someone-else")
	service, repo, _ := newTestServices(foreign)

	err := service.CreateTransaction(context.Background(), &domain.Transaction{
		UserID:     "user-1",
		CategoryID: &foreign.ID,
		Type:       domain.TypeExpense,
		Amount:     5,
		Date:       time.Now(),
	})

	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransaction_DefaultCategoryAllowed(t *testing.T) {
	shared := domain.Category{ID: uuid.New(), Name: "Other", Type: domain.TypeExpense, IsDefault: true}
	service, repo, _ := newTestServices(shared)

	err := service.CreateTransaction(context.Background(), &domain.Transaction{
		UserID:     "user-1",
		CategoryID: &shared.ID,
		Type:       domain.TypeExpense,
		Amount:     5,
		Date:       time.Now(),
	})

	assert.NoError(t, err)
	assert.Len(t, repo.Transactions, 1)
}

func TestGetTransaction_ForeignUserDenied(t *testing.T) {
	service, repo, _ := newTestServices()
	repo.Transactions = []domain.Transaction{{
		ID:     uuid.New(),
		UserID: "owner",
		Type:   domain.TypeExpense,
		Amount: 20,
		Date:   time.Now(),
	}}

	_, err := service.GetTransaction(context.Background(), repo.Transactions[0].ID, "intruder")

	assert.ErrorIs(t, err, financeErrors.ErrAccessDenied)
}

func TestGetTransaction_SoftDeletedHidden(t *testing.T) {
	service, repo, _ := newTestServices()
	now := time.Now()
	repo.Transactions = []domain.Transaction{{
		ID:        uuid.New(),
		UserID:    "owner",
		Type:      domain.TypeExpense,
		Amount:    20,
		Date:      now,
		DeletedAt: &now,
	}}

	_, err := service.GetTransaction(context.Background(), repo.Transactions[0].ID, "owner")

	assert.ErrorIs(t, err, financeErrors.ErrNotFound)
}

func TestRestoreTransaction(t *testing.T) {
	service, repo, _ := newTestServices()
	now := time.Now()
	repo.Transactions = []domain.Transaction{{
		ID:        uuid.New(),
		UserID:    "owner",
		Type:      domain.TypeExpense,
		Amount:    20,
		Date:      now,
		DeletedAt: &now,
	}}

	restored, err := service.RestoreTransaction(context.Background(), repo.Transactions[0].ID, "owner")

	assert.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, repo.Transactions[0].DeletedAt)
}

func TestRestoreTransaction_NotDeleted(t *testing.T) {
	service, repo, _ := newTestServices()
	repo.Transactions = []domain.Transaction{{
		ID:     uuid.New(),
		UserID: "owner",
		Type:   domain.TypeExpense,
		Amount: 20,
		Date:   time.Now(),
	}}

	_, err := service.RestoreTransaction(context.Background(), repo.Transactions[0].ID, "owner")

	assert.True(t, financeErrors.IsValidationError(err))
}

func TestDeleteTransactionsBulk_ScopedToOwner(t *testing.T) {
	service, repo, _ := newTestServices()
	mine := uuid.New()
	theirs := uuid.New()
	repo.Transactions = []domain.Transaction{
		{ID: mine, UserID: "owner", Type: domain.TypeExpense, Amount: 1, Date: time.Now()},
		{ID: theirs, UserID: "other", Type: domain.TypeExpense, Amount: 2, Date: time.Now()},
	}

	affected, err := service.DeleteTransactionsBulk(context.Background(), "owner", []uuid.UUID{mine, theirs})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NotNil(t, repo.Transactions[0].DeletedAt)
	assert.Nil(t, repo.Transactions[1].DeletedAt)
}

func TestCreateTransactionsBulk_AllOrNothingValidation(t *testing.T) {
	service, _, _ := newTestServices()

	transactions := []*domain.Transaction{
		{Type: domain.TypeExpense, Amount: 10, Date: time.Now()},
		{Type: "bogus", Amount: 10, Date: time.Now()},
	}
	err := service.CreateTransactionsBulk(context.Background(), transactions, "user-1")

	assert.Error(t, err)
	var validationErrors *financeErrors.ValidationErrors
	assert.True(t, errors.As(err, &validationErrors))
	assert.Len(t, validationErrors.Errors, 1)
	assert.Contains(t, validationErrors.Errors[0].Error(), "row 2")
}

func TestGetTransactionSummary(t *testing.T) {
	service, repo, _ := newTestServices()
	repo.Transactions = []domain.Transaction{
		{ID: uuid.New(), UserID: "u", Type: domain.TypeIncome, Amount: 1000, Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), UserID: "u", Type: domain.TypeExpense, Amount: 200, Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), UserID: "u", Type: domain.TypeExpense, Amount: 50, Date: time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)},
	}

	summary, err := service.GetTransactionSummary(context.Background(), "u",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	year, ok := summary[2025]
	assert.True(t, ok)
	assert.Equal(t, 1000.0, year.IncomeTotal)
	assert.Equal(t, 250.0, year.ExpenseTotal)

	march := year.Months["March"]
	assert.Equal(t, 1000.0, march.IncomeTotal)
	assert.Equal(t, 250.0, march.ExpenseTotal)
	assert.Len(t, march.Weeks, 2)
}
