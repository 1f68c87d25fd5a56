package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Handler serves the financial reports as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/profit-and-loss", h.profitAndLoss)
	r.Get("/balance-sheet", h.balanceSheet)
	r.Get("/general-ledger/{code}", h.generalLedger)
	r.Get("/balance/{code}", h.balance)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := shared.ParseOptionalDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), asOf)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := shared.ParseDate("from", q.Get("from"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	to, err := shared.ParseDate("to", q.Get("to"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), from, to)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := shared.ParseOptionalDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date := shared.Day(h.now())
	if asOf != nil {
		date = *asOf
	}
	bs, err := h.service.BalanceSheet(r.Context(), date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) generalLedger(w http.ResponseWriter, r *http.Request) {
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
	gl, err := h.service.GeneralLedger(r.Context(), chi.URLParam(r, "code"), from, to)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, gl)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	asOf, err := shared.ParseOptionalDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	code := chi.URLParam(r, "code")
	balance, err := h.service.BalanceOf(r.Context(), code, asOf)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"code": code, "as_of": asOf, "balance": balance})
}
