package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type BudgetServiceInterface interface {
	CreateBudget(ctx context.Context, budget *domain.Budget) error
	GetUserBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	GetBudget(ctx context.Context, budgetID uuid.UUID, userID string) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, userID string, budget *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, budgetID uuid.UUID, userID string) error
	RestoreBudget(ctx context.Context, budgetID uuid.UUID, userID string) (*domain.Budget, error)
	GetUserBudgetStatuses(ctx context.Context, userID string, now time.Time) ([]application.BudgetStatus, error)
}

type BudgetHandler struct {
	service      BudgetServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewBudgetHandler(
	service BudgetServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *BudgetHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &BudgetHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *BudgetHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrAccessDenied):
		h.respondError(w, http.StatusForbidden, "You do not have access to this resource")
	case errors.Is(err, financeErrors.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Budget not found")
	case financeErrors.IsValidationError(err) || financeErrors.IsReferentialError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("budget handler error:", err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var budget domain.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget.UserID = userID
	if err := h.service.CreateBudget(r.Context(), &budget); err != nil {
		h.handleServiceError(w, err, "Failed to create budget")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully created.",
		"data":    budget,
	})
}

func (h *BudgetHandler) GetUserBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	budgets, err := h.service.GetUserBudgets(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve budgets")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budgets retrieved successfully.",
		"data":    budgets,
	})
}

func (h *BudgetHandler) GetBudgetStatuses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	statuses, err := h.service.GetUserBudgetStatuses(r.Context(), userID, time.Now())
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve budget statuses")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget statuses retrieved successfully.",
		"data":    statuses,
	})
}

func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid budget id")
		return
	}

	budget, err := h.service.GetBudget(r.Context(), budgetID, userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget retrieved successfully.",
		"data":    budget,
	})
}

func (h *BudgetHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid budget id")
		return
	}

	var budget domain.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	budget.ID = budgetID

	updated, err := h.service.UpdateBudget(r.Context(), userID, &budget)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget updated successfully.",
		"data":    updated,
	})
}

func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid budget id")
		return
	}

	if err := h.service.DeleteBudget(r.Context(), budgetID, userID); err != nil {
		h.handleServiceError(w, err, "Failed to delete budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget deleted successfully.",
	})
}

func (h *BudgetHandler) RestoreBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, err := pathUUID(r, "budgetID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid budget id")
		return
	}

	budget, err := h.service.RestoreBudget(r.Context(), budgetID, userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to restore budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget restored successfully.",
		"data":    budget,
	})
}
