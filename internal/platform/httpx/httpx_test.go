package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

type lineRequest struct {
	Account string `json:"account" validate:"required"`
}

type entryRequest struct {
	Date     string        `json:"date" validate:"required,datetime=2006-01-02"`
	Currency string        `json:"currency" validate:"required,len=3"`
	Lines    []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

func TestBindReportsFirstInvalidField(t *testing.T) {
	body := `{"date":"2025-01-31","currency":"GBP","lines":[{"account":""}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dst entryRequest
	err := Bind(req, &dst)
	require.ErrorIs(t, err, shared.ErrValidation)
	var ve *shared.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "lines[0].account", ve.Field)
}

func TestBindRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	var dst entryRequest
	require.ErrorIs(t, Bind(req, &dst), shared.ErrValidation)
}

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{shared.UnbalancedEntry(decimal.NewFromInt(100), decimal.NewFromInt(90)), http.StatusUnprocessableEntity, "UNBALANCED_ENTRY"},
		{shared.NotFound("account", "9999"), http.StatusNotFound, "NOT_FOUND"},
		{shared.DuplicateKey("account", "1000"), http.StatusConflict, "DUPLICATE_KEY"},
		{shared.Invalid("currency", "bad"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil, tc.err)
		require.Equal(t, tc.status, rec.Code)
		var problem ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		require.Equal(t, tc.code, problem.Code)
	}
}

func TestRespondErrorCarriesUnbalancedTotals(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest(http.MethodPost, "/", nil), nil,
		shared.UnbalancedEntry(decimal.NewFromInt(100), decimal.NewFromInt(90)))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "100.00", problem.Extensions["debits"])
	require.Equal(t, "90.00", problem.Extensions["credits"])
}
