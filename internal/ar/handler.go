package ar

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Catalog resolves the codes used by invoice requests.
type Catalog interface {
	masterdata.ItemCatalog
	GetCustomerByCode(ctx context.Context, code string) (masterdata.Customer, error)
}

// Handler manages sales endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog Catalog
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, catalog Catalog) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalog}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.listInvoices)
	r.Post("/invoices", h.createInvoice)
	r.Get("/invoices/{number}", h.getInvoice)
	r.Post("/invoices/{number}/payments", h.receivePayment)
	r.Get("/aging", h.aging)
}

type invoiceRequest struct {
	Customer     string                   `json:"customer" validate:"required"`
	Date         string                   `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate      string                   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Currency     string                   `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate decimal.Decimal          `json:"exchange_rate"`
	Terms        string                   `json:"terms" validate:"max=120"`
	Notes        string                   `json:"notes" validate:"max=1000"`
	Lines        []masterdata.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	in, err := h.toInput(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	inv, err := h.service.PostInvoice(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) toInput(ctx context.Context, req invoiceRequest) (InvoiceInput, error) {
	date, err := shared.ParseDate("date", req.Date)
	if err != nil {
		return InvoiceInput{}, err
	}
	due, err := shared.ParseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return InvoiceInput{}, err
	}
	customer, err := h.catalog.GetCustomerByCode(ctx, req.Customer)
	if err != nil {
		return InvoiceInput{}, err
	}
	lines, err := masterdata.ResolveLines(ctx, h.catalog, req.Lines, false)
	if err != nil {
		return InvoiceInput{}, err
	}
	return InvoiceInput{
		CustomerID:   customer.ID,
		Date:         date,
		DueDate:      due,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		Terms:        req.Terms,
		Notes:        req.Notes,
		Lines:        lines,
	}, nil
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := InvoiceFilter{Status: payments.Status(q.Get("status"))}
	var err error
	if filter.From, err = shared.ParseOptionalDate("from", q.Get("from")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if filter.To, err = shared.ParseOptionalDate("to", q.Get("to")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if code := q.Get("customer"); code != "" {
		customer, err := h.catalog.GetCustomerByCode(r.Context(), code)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		filter.CustomerID = &customer.ID
	}
	invoices, err := h.service.ListInvoices(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	page := shared.PageFromQuery(q)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   shared.Window(invoices, page),
		"pagination": page,
		"total":      len(invoices),
	})
}

type receiptRequest struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"max=40"`
	BankAccount string          `json:"bank_account" validate:"required"`
	Reference   string          `json:"reference" validate:"max=80"`
	Description string          `json:"description" validate:"max=255"`
}

func (h *Handler) receivePayment(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date, err := shared.ParseDate("date", req.Date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	payment, err := h.service.ApplyReceipt(r.Context(), payments.ApplyInput{
		DocumentNumber: chi.URLParam(r, "number"),
		Date:           date,
		Amount:         req.Amount,
		Method:         req.Method,
		BankAccount:    req.BankAccount,
		Reference:      req.Reference,
		Description:    req.Description,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	asOf, err := shared.ParseOptionalDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	at := h.service.now()
	if asOf != nil {
		at = *asOf
	}
	report, err := h.service.Aging(r.Context(), at)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
