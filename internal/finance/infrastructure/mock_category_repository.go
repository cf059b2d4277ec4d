package infrastructure

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

// MockCategoryRepository is an in-memory stand-in used by service and seeder tests.
type MockCategoryRepository struct {
	Categories []domain.Category
}

func (m *MockCategoryRepository) Save(_ context.Context, category *domain.Category) error {
	m.Categories = append(m.Categories, *category)
	return nil
}

func (m *MockCategoryRepository) UpsertDefault(_ context.Context, category *domain.Category) error {
	for i := range m.Categories {
		if m.Categories[i].UserID == nil && m.Categories[i].Name == category.Name {
			m.Categories[i].Type = category.Type
			m.Categories[i].Color = category.Color
			m.Categories[i].Icon = category.Icon
			m.Categories[i].DeletedAt = nil
			return nil
		}
	}
	category.IsDefault = true
	m.Categories = append(m.Categories, *category)
	return nil
}

func (m *MockCategoryRepository) FindByID(_ context.Context, categoryID uuid.UUID) (*domain.Category, error) {
	for i := range m.Categories {
		if m.Categories[i].ID == categoryID {
			category := m.Categories[i]
			return &category, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockCategoryRepository) FindDefaultByName(_ context.Context, name string) (*domain.Category, error) {
	for i := range m.Categories {
		if m.Categories[i].UserID == nil && m.Categories[i].Name == name && m.Categories[i].DeletedAt == nil {
			category := m.Categories[i]
			return &category, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockCategoryRepository) FindVisible(_ context.Context, userID string) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range m.Categories {
		if category.DeletedAt != nil {
			continue
		}
		if category.UserID == nil || *category.UserID == userID {
			result = append(result, category)
		}
	}
	return result, nil
}

func (m *MockCategoryRepository) Update(_ context.Context, category *domain.Category) error {
	for i := range m.Categories {
		if m.Categories[i].ID == category.ID && m.Categories[i].DeletedAt == nil {
			m.Categories[i] = *category
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockCategoryRepository) SoftDelete(_ context.Context, categoryID uuid.UUID) error {
	now := time.Now()
	for i := range m.Categories {
		if m.Categories[i].ID == categoryID && m.Categories[i].DeletedAt == nil {
			m.Categories[i].DeletedAt = &now
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockCategoryRepository) Restore(_ context.Context, categoryID uuid.UUID) error {
	for i := range m.Categories {
		if m.Categories[i].ID == categoryID && m.Categories[i].DeletedAt != nil {
			m.Categories[i].DeletedAt = nil
			return nil
		}
	}
	return financeErrors.ErrNotFound
}
