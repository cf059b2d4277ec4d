package application

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type BudgetService struct {
	repo            domain.BudgetRepository
	transactionRepo domain.TransactionRepository
	categoryService CategoryServiceInterface
}

func NewBudgetService(repo domain.BudgetRepository, transactionRepo domain.TransactionRepository, categoryService CategoryServiceInterface) *BudgetService {
	return &BudgetService{repo: repo, transactionRepo: transactionRepo, categoryService: categoryService}
}

// BudgetStatus pairs a budget with its spending in the current period window.
type BudgetStatus struct {
	Budget       domain.Budget `json:"budget"`
	Spent        float64       `json:"spent"`
	PercentUsed  float64       `json:"percent_used"`
	OverBudget   bool          `json:"over_budget"`
	AlertReached bool          `json:"alert_reached"`
}

func (s *BudgetService) CreateBudget(ctx context.Context, budget *domain.Budget) error {
	budget.ID = uuid.New()
	budget.RoundToTwoDecimalPlaces()
	if err := budget.Validate(); err != nil {
		return err
	}

	if budget.CategoryID != nil {
		exists, err := s.categoryService.DoesCategoryExistForUser(ctx, *budget.CategoryID, budget.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.ErrInvalidCategory
		}
	}

	return s.repo.Save(ctx, budget)
}

func (s *BudgetService) GetUserBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	budgets, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		return []domain.Budget{}, nil
	}
	return budgets, nil
}

func (s *BudgetService) getOwned(ctx context.Context, budgetID uuid.UUID, userID string, action domain.Action) (*domain.Budget, error) {
	budget, err := s.repo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if !domain.Can(userID, action, budget) {
		return nil, financeErrors.ErrAccessDenied
	}
	if budget.DeletedAt != nil && action != domain.ActionRestore {
		return nil, financeErrors.ErrNotFound
	}
	return budget, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, budgetID uuid.UUID, userID string) (*domain.Budget, error) {
	return s.getOwned(ctx, budgetID, userID, domain.ActionView)
}

func (s *BudgetService) UpdateBudget(ctx context.Context, userID string, updated *domain.Budget) (*domain.Budget, error) {
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

func (s *BudgetService) DeleteBudget(ctx context.Context, budgetID uuid.UUID, userID string) error {
	if _, err := s.getOwned(ctx, budgetID, userID, domain.ActionDelete); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, budgetID)
}

func (s *BudgetService) RestoreBudget(ctx context.Context, budgetID uuid.UUID, userID string) (*domain.Budget, error) {
	budget, err := s.getOwned(ctx, budgetID, userID, domain.ActionRestore)
	if err != nil {
		return nil, err
	}
	if budget.DeletedAt == nil {
		return nil, financeErrors.NewValidationError("Budget is not deleted")
	}
	if err := s.repo.Restore(ctx, budgetID); err != nil {
		return nil, err
	}
	budget.DeletedAt = nil
	return budget, nil
}

// GetBudgetStatus computes spending against the budget for the period window
// containing now.
func (s *BudgetService) GetBudgetStatus(ctx context.Context, budget *domain.Budget, now time.Time) (*BudgetStatus, error) {
	periodStart := budget.CurrentPeriodStart(now)
	spent, err := s.transactionRepo.SumExpensesForCategory(ctx, budget.UserID, budget.CategoryID, periodStart, now)
	if err != nil {
		return nil, err
	}

	status := &BudgetStatus{
		Budget: *budget,
		Spent:  spent,
	}
	if budget.Amount > 0 {
		status.PercentUsed = math.Round(spent/budget.Amount*10000) / 100
	}
	status.OverBudget = spent > budget.Amount
	status.AlertReached = status.PercentUsed >= float64(budget.AlertThreshold)
	return status, nil
}

func (s *BudgetService) GetUserBudgetStatuses(ctx context.Context, userID string, now time.Time) ([]BudgetStatus, error) {
	budgets, err := s.GetUserBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		status, err := s.GetBudgetStatus(ctx, &budgets[i], now)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// FindTriggeredAlerts scans every active budget and returns the ones whose
// spending has crossed the alert threshold. Used by the alert scheduler.
func (s *BudgetService) FindTriggeredAlerts(ctx context.Context, now time.Time) ([]BudgetStatus, error) {
	budgets, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	var triggered []BudgetStatus
	for i := range budgets {
		if budgets[i].EndDate != nil && budgets[i].EndDate.Before(now) {
			continue
		}
		status, err := s.GetBudgetStatus(ctx, &budgets[i], now)
		if err != nil {
			return nil, err
		}
		if status.AlertReached {
			triggered = append(triggered, *status)
		}
	}
	return triggered, nil
}
