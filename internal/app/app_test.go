package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BASE_CURRENCY", "eur")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "EUR", cfg.BaseCurrency)
	require.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	require.Equal(t, "MAIN", cfg.DefaultLocationCode)
	require.True(t, cfg.SeedDefaults)
	require.Equal(t, 30*time.Second, cfg.AppRequestTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRejects(t *testing.T) {
	t.Run("currency", func(t *testing.T) {
		t.Setenv("BASE_CURRENCY", "POUNDS")
		_, err := LoadConfig()
		require.ErrorIs(t, err, shared.ErrValidation)
	})
	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")
		_, err := LoadConfig()
		require.ErrorContains(t, err, "STORE_DRIVER")
	})
}

func TestInTestMode(t *testing.T) {
	RefreshTestMode()
	require.True(t, InTestMode())
}

func newTestRouter(t *testing.T) (http.Handler, *bookstest.Fixture) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := bookstest.New(t)
	cfg := &Config{AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000}
	h := NewRouter(RouterParams{
		Config:      cfg,
		Books:       f.Books,
		Idempotency: cache.NewIdempotencyGuard(client, time.Hour),
		Metrics:     observability.NewMetrics(),
	})
	return h, f
}

func send(h http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterServesHealthAndSecurityHeaders(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := send(h, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = send(h, http.MethodGet, "/api/v1/accounts/", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Trade Debtors")

	rr = send(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "books_http_requests_total")
}

func TestIdempotencyKeyGuardsRepeatedPosts(t *testing.T) {
	h, f := newTestRouter(t)
	f.Stock(t, "10", "30")
	inv, err := f.Sales.PostInvoice(context.Background(), ar.InvoiceInput{
		CustomerID: f.Customer.ID,
		Date:       bookstest.Date("2024-03-01"),
		Lines:      []shared.DocumentLine{f.WidgetLine("2", "50")},
	})
	require.NoError(t, err)

	missing := `{"document_number":"INV-000099","date":"2024-03-05","amount":"10","bank_account":"1112"}`
	rr := send(h, http.MethodPost, "/api/v1/payments/", missing, "retry-1")
	require.Equal(t, http.StatusNotFound, rr.Code)

	body := `{"document_number":"` + inv.Number + `","date":"2024-03-05","amount":"10","bank_account":"1112"}`
	rr = send(h, http.MethodPost, "/api/v1/payments/", body, "retry-1")
	require.Equal(t, http.StatusCreated, rr.Code, "a failed request releases its key")

	rr = send(h, http.MethodPost, "/api/v1/payments/", body, "retry-1")
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Contains(t, rr.Body.String(), string(shared.CodeDuplicateKey))

	list, err := f.Payments.List(context.Background(), payments.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestLoggerTagsRecords(t *testing.T) {
	var buf strings.Builder
	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "staging"}).Info("hello")
	require.Contains(t, buf.String(), `"service":"books"`)
	require.Contains(t, buf.String(), `"env":"staging"`)

	buf.Reset()
	newLogger(&buf, nil).Info("hello")
	require.Contains(t, buf.String(), "env=development")
}
