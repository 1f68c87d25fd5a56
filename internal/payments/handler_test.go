package payments_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func newRouter(f *bookstest.Fixture) http.Handler {
	r := chi.NewRouter()
	r.Route("/payments", payments.NewHandler(nil, f.Payments).MountRoutes)
	return r
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPaymentsHandlerAppliesAndLists(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	f.Stock(t, "10", "30")
	inv, err := f.Sales.PostInvoice(ctx, ar.InvoiceInput{
		CustomerID: f.Customer.ID,
		Date:       bookstest.Date("2024-03-01"),
		Lines:      []shared.DocumentLine{f.WidgetLine("2", "50")},
	})
	require.NoError(t, err)
	h := newRouter(f)

	rr := post(t, h, `{"document_number":"`+inv.Number+`","date":"2024-03-05","amount":"50","bank_account":"1112"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created payments.Payment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "PMT-IN-000001", created.Number)
	require.True(t, created.Amount.Equal(bookstest.D("50")))

	rr = post(t, h, `{"document_number":"`+inv.Number+`","date":"2024-03-06","amount":"500","bank_account":"1112"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), string(shared.CodeInvalidState))

	rr = post(t, h, `{"document_number":"SO-000001","date":"2024-03-06","amount":"5","bank_account":"1112"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(t, h, `{"document_number":"`+inv.Number+`","date":"05/03/2024","amount":"5","bank_account":"1112"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	list := httptest.NewRecorder()
	h.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/payments/?direction=RECEIPT", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var body struct {
		Payments []payments.Payment `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &body))
	require.Len(t, body.Payments, 1)

	one := httptest.NewRecorder()
	h.ServeHTTP(one, httptest.NewRequest(http.MethodGet, "/payments/pmt-in-000001", nil))
	require.Equal(t, http.StatusOK, one.Code)
}
