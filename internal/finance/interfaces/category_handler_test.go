package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/infrastructure"
)

func newCategoryHandler(categories ...domain.Category) (*CategoryHandler, *infrastructure.MockCategoryRepository) {
	repo := &infrastructure.MockCategoryRepository{Categories: categories}
	return NewCategoryHandler(application.NewCategoryService(repo), respondJSON, respondError), repo
}

func TestGetCategoriesHandler_IncludesDefaults(t *testing.T) {
	userID := "user-1"
	otherUser := "user-2"
	handler, _ := newCategoryHandler(
		domain.Category{ID: uuid.New(), Name: "Other", Type: domain.TypeExpense, IsDefault: true},
		domain.Category{ID: uuid.New(), UserID: &userID, Name: "Mine", Type: domain.TypeExpense},
		domain.Category{ID: uuid.New(), UserID: &otherUser, Name: "Theirs", Type: domain.TypeExpense},
	)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/protected/categories", nil), userID)
	w := httptest.NewRecorder()

	handler.GetCategories(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Data []domain.Category `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Len(t, response.Data, 2)
	names := []string{response.Data[0].Name, response.Data[1].Name}
	assert.Contains(t, names, "Other")
	assert.Contains(t, names, "Mine")
}

func TestCreateCategoryHandler(t *testing.T) {
	handler, repo := newCategoryHandler()

	body, _ := json.Marshal(map[string]interface{}{
		"name":  "Books",
		"type":  "expense",
		"color": "#22C55E",
	})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/protected/categories", bytes.NewBuffer(body)), "user-1")
	w := httptest.NewRecorder()

	handler.CreateCategory(w, req)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	assert.Len(t, repo.Categories, 1)
	assert.Equal(t, "user-1", *repo.Categories[0].UserID)
	assert.False(t, repo.Categories[0].IsDefault)
}

func TestCreateCategoryHandler_InvalidColor(t *testing.T) {
	handler, _ := newCategoryHandler()

	body, _ := json.Marshal(map[string]interface{}{
		"name":  "Books",
		"type":  "expense",
		"color": "green",
	})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/protected/categories", bytes.NewBuffer(body)), "user-1")
	w := httptest.NewRecorder()

	handler.CreateCategory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestUpdateCategoryHandler_DefaultIsReadOnly(t *testing.T) {
	shared := domain.Category{ID: uuid.New(), Name: "Other", Type: domain.TypeExpense, IsDefault: true}
	handler, _ := newCategoryHandler(shared)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Hijacked",
		"type": "expense",
	})
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/protected/categories/"+shared.ID.String(), bytes.NewBuffer(body)), "user-1")
	req.SetPathValue("categoryID", shared.ID.String())
	w := httptest.NewRecorder()

	handler.UpdateCategory(w, req)

	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode)
}

func TestDeleteCategoryHandler_ForeignUserGets403(t *testing.T) {
	owner := "owner"
	category := domain.Category{ID: uuid.New(), UserID: &owner, Name: "Mine", Type: domain.TypeExpense}
	handler, repo := newCategoryHandler(category)

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/protected/categories/"+category.ID.String(), nil), "intruder")
	req.SetPathValue("categoryID", category.ID.String())
	w := httptest.NewRecorder()

	handler.DeleteCategory(w, req)

	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode)
	assert.Nil(t, repo.Categories[0].DeletedAt)
}
