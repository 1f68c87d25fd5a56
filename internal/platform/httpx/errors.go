// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// StatusFor maps a taxonomy code to an HTTP status.
func StatusFor(code shared.Code) int {
	switch code {
	case shared.CodeValidation:
		return http.StatusBadRequest
	case shared.CodeNotFound:
		return http.StatusNotFound
	case shared.CodeDuplicateKey:
		return http.StatusConflict
	case shared.CodeUnbalancedEntry, shared.CodeInsufficientStock, shared.CodeInvalidState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Internal errors are logged and their detail withheld.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := shared.CodeOf(err)
	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(r.Context(), "request failed",
				slog.String("path", r.URL.Path),
				slog.String("code", string(code)),
				slog.Any("error", err))
		}
		detail := ""
		if code == shared.CodeConfigurationMissing {
			detail = err.Error()
		}
		Problem(w, status, string(code), http.StatusText(status), detail, nil)
		return
	}
	Problem(w, status, string(code), http.StatusText(status), err.Error(), extensions(err))
}

func extensions(err error) map[string]any {
	var unbalanced *shared.UnbalancedEntryError
	if errors.As(err, &unbalanced) {
		return map[string]any{
			"debits":  unbalanced.Debits.StringFixed(2),
			"credits": unbalanced.Credits.StringFixed(2),
		}
	}
	var stock *shared.InsufficientStockError
	if errors.As(err, &stock) {
		return map[string]any{
			"available": stock.Available.String(),
			"requested": stock.Requested.String(),
		}
	}
	var invalid *shared.ValidationError
	if errors.As(err, &invalid) && invalid.Field != "" {
		return map[string]any{"field": invalid.Field}
	}
	return nil
}
