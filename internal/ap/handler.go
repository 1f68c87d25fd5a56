package ap

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

// Catalog resolves the codes used by bill requests.
type Catalog interface {
	masterdata.ItemCatalog
	GetSupplierByCode(ctx context.Context, code string) (masterdata.Supplier, error)
}

// Handler wires AP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog Catalog
}

// NewHandler constructs the AP handler.
func NewHandler(logger *slog.Logger, service *Service, catalog Catalog) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalog}
}

// MountRoutes registers AP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bills", h.listBills)
	r.Post("/bills", h.createBill)
	r.Get("/bills/{number}", h.getBill)
	r.Post("/bills/{number}/payments", h.payBill)
}

type billRequest struct {
	Supplier        string                   `json:"supplier" validate:"required"`
	SupplierInvoice string                   `json:"supplier_invoice" validate:"max=80"`
	Date            string                   `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate         string                   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Currency        string                   `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate    decimal.Decimal          `json:"exchange_rate"`
	Notes           string                   `json:"notes" validate:"max=1000"`
	Lines           []masterdata.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	in, err := h.toInput(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	bill, err := h.service.PostBill(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) toInput(ctx context.Context, req billRequest) (BillInput, error) {
	date, err := shared.ParseDate("date", req.Date)
	if err != nil {
		return BillInput{}, err
	}
	due, err := shared.ParseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return BillInput{}, err
	}
	supplier, err := h.catalog.GetSupplierByCode(ctx, req.Supplier)
	if err != nil {
		return BillInput{}, err
	}
	lines, err := masterdata.ResolveLines(ctx, h.catalog, req.Lines, true)
	if err != nil {
		return BillInput{}, err
	}
	return BillInput{
		SupplierID:      supplier.ID,
		SupplierInvoice: req.SupplierInvoice,
		Date:            date,
		DueDate:         due,
		Currency:        req.Currency,
		ExchangeRate:    req.ExchangeRate,
		Notes:           req.Notes,
		Lines:           lines,
	}, nil
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetBill(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := BillFilter{Status: payments.Status(q.Get("status"))}
	var err error
	if filter.From, err = shared.ParseOptionalDate("from", q.Get("from")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if filter.To, err = shared.ParseOptionalDate("to", q.Get("to")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if code := q.Get("supplier"); code != "" {
		supplier, err := h.catalog.GetSupplierByCode(r.Context(), code)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		filter.SupplierID = &supplier.ID
	}
	bills, err := h.service.ListBills(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	page := shared.PageFromQuery(q)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"bills":      shared.Window(bills, page),
		"pagination": page,
		"total":      len(bills),
	})
}

type paymentRequest struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"max=40"`
	BankAccount string          `json:"bank_account" validate:"required"`
	Reference   string          `json:"reference" validate:"max=80"`
	Description string          `json:"description" validate:"max=255"`
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date, err := shared.ParseDate("date", req.Date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	payment, err := h.service.ApplyPayment(r.Context(), payments.ApplyInput{
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
