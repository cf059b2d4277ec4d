package infrastructure

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

// MockBudgetRepository is an in-memory stand-in used by service tests.
type MockBudgetRepository struct {
	Budgets []domain.Budget
}

func (m *MockBudgetRepository) Save(_ context.Context, budget *domain.Budget) error {
	m.Budgets = append(m.Budgets, *budget)
	return nil
}

func (m *MockBudgetRepository) FindByID(_ context.Context, budgetID uuid.UUID) (*domain.Budget, error) {
	for i := range m.Budgets {
		if m.Budgets[i].ID == budgetID {
			budget := m.Budgets[i]
			return &budget, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockBudgetRepository) FindByUser(_ context.Context, userID string) ([]domain.Budget, error) {
	var result []domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.DeletedAt == nil {
			result = append(result, budget)
		}
	}
	return result, nil
}

func (m *MockBudgetRepository) FindAllActive(_ context.Context) ([]domain.Budget, error) {
	var result []domain.Budget
	for _, budget := range m.Budgets {
		if budget.IsActive && budget.DeletedAt == nil {
			result = append(result, budget)
		}
	}
	return result, nil
}

func (m *MockBudgetRepository) Update(_ context.Context, budget *domain.Budget) error {
	for i := range m.Budgets {
		if m.Budgets[i].ID == budget.ID && m.Budgets[i].DeletedAt == nil {
			m.Budgets[i] = *budget
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockBudgetRepository) SoftDelete(_ context.Context, budgetID uuid.UUID) error {
	now := time.Now()
	for i := range m.Budgets {
		if m.Budgets[i].ID == budgetID && m.Budgets[i].DeletedAt == nil {
			m.Budgets[i].DeletedAt = &now
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockBudgetRepository) Restore(_ context.Context, budgetID uuid.UUID) error {
	for i := range m.Budgets {
		if m.Budgets[i].ID == budgetID && m.Budgets[i].DeletedAt != nil {
			m.Budgets[i].DeletedAt = nil
			return nil
		}
	}
	return financeErrors.ErrNotFound
}
