package application

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type CategoryServiceInterface interface {
	DoesCategoryExistForUser(ctx context.Context, categoryID uuid.UUID, userID string) (bool, error)
	GetVisibleCategories(ctx context.Context, userID string) ([]domain.Category, error)
}

type TransactionService struct {
	repo            domain.TransactionRepository
	categoryService CategoryServiceInterface
}

func NewTransactionService(repo domain.TransactionRepository, categoryService CategoryServiceInterface) *TransactionService {
	return &TransactionService{repo: repo, categoryService: categoryService}
}

type TransactionSummary struct {
	Year         int
	IncomeTotal  float64
	ExpenseTotal float64
	Months       map[string]MonthSummary
}

type MonthSummary struct {
	IncomeTotal  float64
	ExpenseTotal float64
	Weeks        []WeekSummary
}

type WeekSummary struct {
	Week         int
	IncomeTotal  float64
	ExpenseTotal float64
}

func (s *TransactionService) GetTransactionSummary(ctx context.Context, userID string, startDate, endDate time.Time) (map[int]TransactionSummary, error) {
	transactions, err := s.repo.FindInDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	summary := make(map[int]TransactionSummary)

	for _, transaction := range transactions {
		year := transaction.Date.Year()
		month := transaction.Date.Month().String()
		_, week := transaction.Date.ISOWeek()

		if _, exists := summary[year]; !exists {
			summary[year] = TransactionSummary{
				Year:   year,
				Months: make(map[string]MonthSummary),
			}
		}

		yearSummary := summary[year]

		if _, exists := yearSummary.Months[month]; !exists {
			yearSummary.Months[month] = MonthSummary{
				Weeks: []WeekSummary{},
			}
		}

		monthSummary := yearSummary.Months[month]

		if transaction.Type == domain.TypeIncome {
			yearSummary.IncomeTotal += transaction.Amount
			monthSummary.IncomeTotal += transaction.Amount
		} else if transaction.Type == domain.TypeExpense {
			yearSummary.ExpenseTotal += transaction.Amount
			monthSummary.ExpenseTotal += transaction.Amount
		}

		found := false
		for i, weekSummary := range monthSummary.Weeks {
			if weekSummary.Week == week {
				if transaction.Type == domain.TypeIncome {
					monthSummary.Weeks[i].IncomeTotal += transaction.Amount
				} else if transaction.Type == domain.TypeExpense {
					monthSummary.Weeks[i].ExpenseTotal += transaction.Amount
				}
				found = true
				break
			}
		}
		if !found {
			weekSummary := WeekSummary{
				Week: week,
			}
			if transaction.Type == domain.TypeIncome {
				weekSummary.IncomeTotal = transaction.Amount
			} else if transaction.Type == domain.TypeExpense {
				weekSummary.ExpenseTotal = transaction.Amount
			}
			monthSummary.Weeks = append(monthSummary.Weeks, weekSummary)
		}

		yearSummary.Months[month] = monthSummary
		summary[year] = yearSummary
	}

	return summary, nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	transaction.ID = uuid.New()
	transaction.RoundToTwoDecimalPlaces()
	if err := transaction.Validate(); err != nil {
		return err
	}

	if transaction.CategoryID != nil {
		exists, err := s.categoryService.DoesCategoryExistForUser(ctx, *transaction.CategoryID, transaction.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.ErrInvalidCategory
		}
	}

	return s.repo.Save(ctx, transaction)
}

// CreateTransactionsBulk validates every row before anything is kept: all
// rows are written inside one database transaction that is rolled back when
// any row fails validation.
func (s *TransactionService) CreateTransactionsBulk(ctx context.Context, transactions []*domain.Transaction, userID string) (err error) {
	categories, err := s.categoryService.GetVisibleCategories(ctx, userID)
	if err != nil {
		return err
	}
	categoryMap := make(map[uuid.UUID]bool)
	for _, category := range categories {
		categoryMap[category.ID] = true
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	var validationErrors = &financeErrors.ValidationErrors{}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else if tx != nil {
			err = tx.Commit()
		}
	}()

	for i, transaction := range transactions {
		transaction.ID = uuid.New()
		transaction.UserID = userID
		transaction.RoundToTwoDecimalPlaces()
		if err := transaction.Validate(); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}
		if transaction.CategoryID != nil && !categoryMap[*transaction.CategoryID] {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidCategory.Error()))
			continue
		}
		if err = s.repo.SaveWithTx(ctx, tx, transaction); err != nil {
			return fmt.Errorf("database error at row %d: %w", i+1, err)
		}
	}

	if len(validationErrors.Errors) > 0 {
		err = validationErrors
		return err
	}
	return nil
}

func safeRollback(tx *sql.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

func (s *TransactionService) GetUserTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

// getOwned loads a transaction and applies the ownership policy for the
// requested action. Soft-deleted rows resolve only for restore/force-delete.
func (s *TransactionService) getOwned(ctx context.Context, transactionID uuid.UUID, userID string, action domain.Action) (*domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !domain.Can(userID, action, transaction) {
		return nil, financeErrors.ErrAccessDenied
	}
	if transaction.DeletedAt != nil && action != domain.ActionRestore && action != domain.ActionForceDelete {
		return nil, financeErrors.ErrNotFound
	}
	return transaction, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, transactionID uuid.UUID, userID string) (*domain.Transaction, error) {
	return s.getOwned(ctx, transactionID, userID, domain.ActionView)
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, userID string, updated *domain.Transaction) (*domain.Transaction, error) {
	existing, err := s.getOwned(ctx, updated.ID, userID, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	updated.UserID = existing.UserID
	updated.RoundToTwoDecimalPlaces()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if updated.CategoryID != nil {
		exists, err := s.categoryService.DoesCategoryExistForUser(ctx, *updated.CategoryID, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, financeErrors.ErrInvalidCategory
		}
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID uuid.UUID, userID string) error {
	if _, err := s.getOwned(ctx, transactionID, userID, domain.ActionDelete); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, transactionID)
}

func (s *TransactionService) DeleteTransactionsBulk(ctx context.Context, userID string, transactionIDs []uuid.UUID) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, financeErrors.NewValidationError("No transaction ids provided")
	}
	// The query is already scoped to the owner, so foreign rows are untouched.
	return s.repo.SoftDeleteBulk(ctx, userID, transactionIDs)
}

func (s *TransactionService) RestoreTransaction(ctx context.Context, transactionID uuid.UUID, userID string) (*domain.Transaction, error) {
	transaction, err := s.getOwned(ctx, transactionID, userID, domain.ActionRestore)
	if err != nil {
		return nil, err
	}
	if transaction.DeletedAt == nil {
		return nil, financeErrors.NewValidationError("Transaction is not deleted")
	}
	if err := s.repo.Restore(ctx, transactionID); err != nil {
		return nil, err
	}
	transaction.DeletedAt = nil
	return transaction, nil
}

func (s *TransactionService) ForceDeleteTransaction(ctx context.Context, transactionID uuid.UUID, userID string) error {
	if _, err := s.getOwned(ctx, transactionID, userID, domain.ActionForceDelete); err != nil {
		return err
	}
	return s.repo.ForceDelete(ctx, transactionID)
}

func (s *TransactionService) GetTransactionSummaryByCategory(ctx context.Context, userID string, startDate, endDate time.Time, transactionType string) ([]domain.CategoryTotal, error) {
	totals, err := s.repo.SumByCategory(ctx, userID, startDate, endDate, transactionType)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		return []domain.CategoryTotal{}, nil
	}
	return totals, nil
}
