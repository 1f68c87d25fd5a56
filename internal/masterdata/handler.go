package masterdata

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
)

// Handler exposes master data over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{code}", h.getCustomer)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Post("/", h.createSupplier)
		r.Get("/{code}", h.getSupplier)
	})
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)
		r.Get("/{code}", h.getItem)
	})
	r.Route("/locations", func(r chi.Router) {
		r.Get("/", h.listLocations)
		r.Post("/", h.createLocation)
		r.Get("/{code}", h.getLocation)
	})
}

type partyRequest struct {
	Code             string `json:"code" validate:"required,max=20"`
	Name             string `json:"name" validate:"required,max=120"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone" validate:"max=40"`
	Address          string `json:"address" validate:"max=255"`
	PaymentTermsDays int    `json:"payment_terms_days" validate:"min=0,max=365"`
}

func (p partyRequest) input() PartyInput {
	return PartyInput{Code: p.Code, Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address, PaymentTermsDays: p.PaymentTermsDays}
}

type itemRequest struct {
	Code          string          `json:"code" validate:"required,max=40"`
	Name          string          `json:"name" validate:"required,max=120"`
	Description   string          `json:"description" validate:"max=255"`
	UnitOfMeasure string          `json:"unit_of_measure" validate:"max=10"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	TrackStock    bool            `json:"track_stock"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
}

type locationRequest struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"max=120"`
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, status, v)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.ListCustomers(r.Context())
	h.respond(w, r, http.StatusOK, map[string]any{"customers": v}, err)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetCustomerByCode(r.Context(), chi.URLParam(r, "code"))
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	v, err := h.service.CreateCustomer(r.Context(), req.input())
	h.respond(w, r, http.StatusCreated, v, err)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.ListSuppliers(r.Context())
	h.respond(w, r, http.StatusOK, map[string]any{"suppliers": v}, err)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetSupplierByCode(r.Context(), chi.URLParam(r, "code"))
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	v, err := h.service.CreateSupplier(r.Context(), req.input())
	h.respond(w, r, http.StatusCreated, v, err)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.ListItems(r.Context())
	h.respond(w, r, http.StatusOK, map[string]any{"items": v}, err)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetItemByCode(r.Context(), chi.URLParam(r, "code"))
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	v, err := h.service.CreateItem(r.Context(), ItemInput{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		UnitOfMeasure: req.UnitOfMeasure,
		SalesPrice:    req.SalesPrice,
		PurchasePrice: req.PurchasePrice,
		VATRate:       req.VATRate,
		TrackStock:    req.TrackStock,
		ReorderLevel:  req.ReorderLevel,
	})
	h.respond(w, r, http.StatusCreated, v, err)
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.ListLocations(r.Context())
	h.respond(w, r, http.StatusOK, map[string]any{"locations": v}, err)
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetLocationByCode(r.Context(), chi.URLParam(r, "code"))
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	v, err := h.service.CreateLocation(r.Context(), LocationInput{Code: req.Code, Name: req.Name})
	h.respond(w, r, http.StatusCreated, v, err)
}
