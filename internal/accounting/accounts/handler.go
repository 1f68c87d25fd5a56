package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Handler exposes the chart of accounts over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{code}", h.get)
	r.Patch("/{code}", h.update)
}

type createRequest struct {
	Code            string `json:"code" validate:"required,max=20"`
	Name            string `json:"name" validate:"required,max=120"`
	Type            string `json:"type" validate:"required"`
	ParentCode      string `json:"parent_code" validate:"omitempty,max=20"`
	ExpenseCategory string `json:"expense_category" validate:"omitempty,oneof=COGS OPERATING"`
}

type updateRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=120"`
	Type            *string `json:"type"`
	ParentCode      *string `json:"parent_code" validate:"omitempty,max=20"`
	ExpenseCategory *string `json:"expense_category" validate:"omitempty,oneof=COGS OPERATING"`
	IsActive        *bool   `json:"is_active"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	accountType, ok := ParseAccountType(req.Type)
	if !ok {
		httpx.RespondError(w, r, h.logger, shared.Invalid("type", "must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE"))
		return
	}
	account, err := h.service.Create(r.Context(), CreateInput{
		Code:            req.Code,
		Name:            req.Name,
		Type:            accountType,
		ParentCode:      req.ParentCode,
		ExpenseCategory: ExpenseCategory(req.ExpenseCategory),
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	in := UpdateInput{Name: req.Name, ParentCode: req.ParentCode, IsActive: req.IsActive}
	if req.Type != nil {
		accountType, ok := ParseAccountType(*req.Type)
		if !ok {
			httpx.RespondError(w, r, h.logger, shared.Invalid("type", "must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE"))
			return
		}
		in.Type = &accountType
	}
	if req.ExpenseCategory != nil {
		category := ExpenseCategory(*req.ExpenseCategory)
		in.ExpenseCategory = &category
	}
	account, err := h.service.Update(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}
