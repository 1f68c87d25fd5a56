package inventory

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Catalog resolves item and location codes sent by clients.
type Catalog interface {
	GetItemByCode(ctx context.Context, code string) (masterdata.Item, error)
	GetLocationByCode(ctx context.Context, code string) (masterdata.Location, error)
}

// Handler exposes stock movements and stock queries over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog Catalog
}

func NewHandler(logger *slog.Logger, service *Service, catalog Catalog) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalog}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/receipts", h.receive)
	r.Post("/issues", h.issue)
	r.Post("/transfers", h.transfer)
	r.Get("/stock", h.stock)
	r.Get("/valuation", h.valuation)
	r.Get("/reorder-alerts", h.reorderAlerts)
	r.Get("/movements", h.movements)
}

type movementRequest struct {
	Item      string          `json:"item" validate:"required"`
	Location  string          `json:"location" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Date      string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Reference string          `json:"reference" validate:"max=80"`
}

type transferRequest struct {
	Item         string          `json:"item" validate:"required"`
	FromLocation string          `json:"from_location" validate:"required"`
	ToLocation   string          `json:"to_location" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Reference    string          `json:"reference" validate:"max=80"`
}

func (h *Handler) resolve(ctx context.Context, itemCode string, locationCodes ...string) (int64, []int64, error) {
	item, err := h.catalog.GetItemByCode(ctx, itemCode)
	if err != nil {
		return 0, nil, err
	}
	ids := make([]int64, 0, len(locationCodes))
	for _, code := range locationCodes {
		loc, err := h.catalog.GetLocationByCode(ctx, code)
		if err != nil {
			return 0, nil, err
		}
		ids = append(ids, loc.ID)
	}
	return item.ID, ids, nil
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date, err := parseMovementDate(req.Date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	itemID, locs, err := h.resolve(r.Context(), req.Item, req.Location)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	res, err := h.service.Receive(r.Context(), ReceiptInput{
		ItemID: itemID, LocationID: locs[0], Quantity: req.Quantity, UnitCost: req.UnitCost, Date: date, Reference: req.Reference,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date, err := parseMovementDate(req.Date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	itemID, locs, err := h.resolve(r.Context(), req.Item, req.Location)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	res, err := h.service.Issue(r.Context(), IssueInput{
		ItemID: itemID, LocationID: locs[0], Quantity: req.Quantity, Date: date, Reference: req.Reference,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date, err := parseMovementDate(req.Date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	itemID, locs, err := h.resolve(r.Context(), req.Item, req.FromLocation, req.ToLocation)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	res, err := h.service.Transfer(r.Context(), TransferInput{
		ItemID: itemID, FromLocationID: locs[0], ToLocationID: locs[1], Quantity: req.Quantity, Date: date, Reference: req.Reference,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	var locationID *int64
	if code := r.URL.Query().Get("location"); code != "" {
		loc, err := h.catalog.GetLocationByCode(r.Context(), code)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		locationID = &loc.ID
	}
	lines, err := h.service.StockByLocation(r.Context(), locationID)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stock": lines})
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Valuation(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) reorderAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.ReorderAlerts(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := shared.PageFromQuery(q)
	filter := MovementFilter{Limit: page.Limit(), Offset: page.Offset()}
	var err error
	if filter.From, err = shared.ParseOptionalDate("from", q.Get("from")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if filter.To, err = shared.ParseOptionalDate("to", q.Get("to")); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if code := q.Get("item"); code != "" {
		item, err := h.catalog.GetItemByCode(r.Context(), code)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		filter.ItemID = &item.ID
	}
	if code := q.Get("location"); code != "" {
		loc, err := h.catalog.GetLocationByCode(r.Context(), code)
		if err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
		filter.LocationID = &loc.ID
	}
	txns, err := h.service.Movements(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": txns, "pagination": page})
}

func parseMovementDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return shared.ParseDate("date", value)
}
