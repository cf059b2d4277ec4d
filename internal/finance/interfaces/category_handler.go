package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type CategoryServiceInterface interface {
	GetVisibleCategories(ctx context.Context, userID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category, userID string) error
	GetCategory(ctx context.Context, categoryID uuid.UUID, userID string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, userID string, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID, userID string) error
	RestoreCategory(ctx context.Context, categoryID uuid.UUID, userID string) (*domain.Category, error)
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CategoryHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CategoryHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrAccessDenied):
		h.respondError(w, http.StatusForbidden, "You do not have access to this resource")
	case errors.Is(err, financeErrors.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Category not found")
	case financeErrors.IsValidationError(err) || financeErrors.IsReferentialError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("category handler error:", err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	categoryType := r.URL.Query().Get("type")
	if categoryType != "" && !domain.IsValidTransactionType(categoryType) {
		h.respondError(w, http.StatusBadRequest, "Invalid category type")
		return
	}

	categories, err := h.service.GetVisibleCategories(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve categories")
		return
	}
	if categoryType != "" {
		filtered := make([]domain.Category, 0, len(categories))
		for _, category := range categories {
			if category.Type == categoryType {
				filtered = append(filtered, category)
			}
		}
		categories = filtered
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    categories,
	})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.CreateCategory(r.Context(), &category, userID); err != nil {
		h.handleServiceError(w, err, "Failed to create category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.service.GetCategory(r.Context(), categoryID, userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category retrieved successfully.",
		"data":    category,
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	category.ID = categoryID

	updated, err := h.service.UpdateCategory(r.Context(), userID, &category)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category updated successfully.",
		"data":    updated,
	})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), categoryID, userID); err != nil {
		h.handleServiceError(w, err, "Failed to delete category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category deleted successfully.",
	})
}

func (h *CategoryHandler) RestoreCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryID, err := pathUUID(r, "categoryID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.service.RestoreCategory(r.Context(), categoryID, userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to restore category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category restored successfully.",
		"data":    category,
	})
}
