package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) DoesCategoryExistForUser(ctx context.Context, categoryID uuid.UUID, userID string) (bool, error) {
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, financeErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if category.DeletedAt != nil {
		return false, nil
	}
	return domain.Can(userID, domain.ActionView, category), nil
}

func (s *CategoryService) GetVisibleCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	categories, err := s.repo.FindVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *domain.Category, userID string) error {
	category.ID = uuid.New()
	category.UserID = &userID
	category.IsDefault = false
	if err := category.Validate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, category)
}

func (s *CategoryService) getOwned(ctx context.Context, categoryID uuid.UUID, userID string, action domain.Action) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !domain.Can(userID, action, category) {
		return nil, financeErrors.ErrAccessDenied
	}
	if category.DeletedAt != nil && action != domain.ActionRestore {
		return nil, financeErrors.ErrNotFound
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID uuid.UUID, userID string) (*domain.Category, error) {
	return s.getOwned(ctx, categoryID, userID, domain.ActionView)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, userID string, updated *domain.Category) (*domain.Category, error) {
	existing, err := s.getOwned(ctx, updated.ID, userID, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	updated.UserID = existing.UserID
	updated.IsDefault = existing.IsDefault
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory tombstones the category. The repository detaches the
// category's transactions and soft-deletes its budgets in the same database
// transaction.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID uuid.UUID, userID string) error {
	if _, err := s.getOwned(ctx, categoryID, userID, domain.ActionDelete); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, categoryID)
}

func (s *CategoryService) RestoreCategory(ctx context.Context, categoryID uuid.UUID, userID string) (*domain.Category, error) {
	category, err := s.getOwned(ctx, categoryID, userID, domain.ActionRestore)
	if err != nil {
		return nil, err
	}
	if category.DeletedAt == nil {
		return nil, financeErrors.NewValidationError("Category is not deleted")
	}
	if err := s.repo.Restore(ctx, categoryID); err != nil {
		return nil, err
	}
	category.DeletedAt = nil
	return category, nil
}
