package interfaces

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

// maxImportSize caps uploads at 5 MiB, plenty for personal-finance exports.
const maxImportSize = 5 << 20

// exportQueryLimit effectively disables pagination for exports; a personal
// account stays far below it. Exports must never truncate.
const exportQueryLimit = 100000

// exportEpoch is the default window start for exports: the full history, not
// the current-year default the listing endpoints use.
var exportEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type CSVServiceInterface interface {
	Export(ctx context.Context, w io.Writer, userID string, filter domain.TransactionFilter) error
	Import(ctx context.Context, r io.Reader, userID string) (*application.ImportResult, error)
}

type CSVHandler struct {
	service      CSVServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCSVHandler(
	service CSVServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CSVHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &CSVHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CSVHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := domain.TransactionFilter{Limit: exportQueryLimit, Page: 1}
	startDate, endDate, err := dateRangeFromQuery(r, exportEpoch)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	// Buffer the export so a storage failure never yields a half-written 200.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, userID, filter); err != nil {
		log.Println("csv export error:", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to export transactions")
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Println("csv export write error:", err)
	}
}

func (h *CSVHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := h.importBody(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Import(r.Context(), body, userID)
	if err != nil {
		var validationErrors *financeErrors.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorMessages := make([]string, len(validationErrors.Errors))
			for i, vErr := range validationErrors.Errors {
				errorMessages[i] = vErr.Error()
			}
			h.respondError(w, http.StatusBadRequest, "Validation errors occurred", errorMessages)
			return
		}
		if financeErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("csv import error:", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to import transactions")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transactions imported successfully.",
		"data":    result,
	})
}

// importBody accepts either a multipart upload with a "file" part or a raw
// CSV request body.
func (h *CSVHandler) importBody(r *http.Request) (io.Reader, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			return nil, errors.New("Invalid multipart request")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("Missing 'file' upload")
		}
		return file, nil
	}
	return io.LimitReader(r.Body, maxImportSize), nil
}
