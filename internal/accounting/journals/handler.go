package journals

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// AccountLookup resolves account codes sent by clients.
type AccountLookup interface {
	GetByCode(ctx context.Context, code string) (accounts.Account, error)
}

// Handler exposes manual journal posting over HTTP.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	accounts     AccountLookup
	baseCurrency string
}

func NewHandler(logger *slog.Logger, service *Service, lookup AccountLookup, baseCurrency string) *Handler {
	return &Handler{logger: logger, service: service, accounts: lookup, baseCurrency: baseCurrency}
}

// MountRoutes registers journal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{number}", h.get)
}

type lineRequest struct {
	Account     string          `json:"account" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" validate:"max=255"`
}

type postRequest struct {
	Date         string           `json:"date" validate:"required,datetime=2006-01-02"`
	Type         string           `json:"type" validate:"max=40"`
	Reference    string           `json:"reference" validate:"max=80"`
	Description  string           `json:"description" validate:"max=255"`
	Currency     string           `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
	Lines        []lineRequest    `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	in, err := h.toInput(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	entry, err := h.service.Post(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) toInput(ctx context.Context, req postRequest) (PostingInput, error) {
	date, err := shared.ParseDate("date", req.Date)
	if err != nil {
		return PostingInput{}, err
	}
	in := PostingInput{
		Date:         date,
		Type:         TypeManual,
		Reference:    req.Reference,
		Description:  req.Description,
		Currency:     req.Currency,
		ExchangeRate: decimal.NewFromInt(1),
	}
	if req.Type != "" {
		in.Type = ParseEntryType(req.Type)
	}
	if in.Currency == "" {
		in.Currency = h.baseCurrency
	}
	if req.ExchangeRate != nil {
		in.ExchangeRate = *req.ExchangeRate
	}
	for idx, l := range req.Lines {
		account, err := h.accounts.GetByCode(ctx, l.Account)
		if err != nil {
			return PostingInput{}, fmt.Errorf("lines[%d]: %w", idx, err)
		}
		in.Lines = append(in.Lines, LineInput{
			AccountID:   account.ID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return in, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := shared.ParseOptionalDate("from", q.Get("from"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	to, err := shared.ParseOptionalDate("to", q.Get("to"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	page := shared.PageFromQuery(q)
	filter := ListFilter{From: from, To: to, Limit: page.Limit(), Offset: page.Offset()}
	if tag := q.Get("type"); tag != "" {
		entryType := ParseEntryType(tag)
		filter.Type = &entryType
	}
	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries, "pagination": page})
}
