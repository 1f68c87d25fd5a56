package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Handler exposes payment application over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.apply)
	r.Get("/{number}", h.get)
}

type applyRequest struct {
	DocumentNumber string          `json:"document_number" validate:"required"`
	Date           string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method" validate:"max=40"`
	BankAccount    string          `json:"bank_account" validate:"required"`
	Reference      string          `json:"reference" validate:"max=80"`
	Description    string          `json:"description" validate:"max=255"`
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date, err := shared.ParseDate("date", req.Date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	payment, err := h.service.Apply(r.Context(), ApplyInput{
		DocumentNumber: req.DocumentNumber,
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

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Direction: Direction(q.Get("direction")), DocumentNumber: q.Get("document")}
	var err error
	if filter.From, err = shared.ParseOptionalDate("from", q.Get("from")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if filter.To, err = shared.ParseOptionalDate("to", q.Get("to")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": list})
}
