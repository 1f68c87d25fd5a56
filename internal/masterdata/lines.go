package masterdata

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// ItemCatalog resolves item and location codes.
type ItemCatalog interface {
	GetItemByCode(ctx context.Context, code string) (Item, error)
	GetLocationByCode(ctx context.Context, code string) (Location, error)
}

// LineRequest is an invoice or bill line as clients send it, by code.
type LineRequest struct {
	Item        string           `json:"item"`
	Location    string           `json:"location"`
	Description string           `json:"description" validate:"max=255"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
}

// ResolveLines turns coded lines into document lines. An omitted price or VAT
// rate falls back to the item's own, using price for sales or purchases as asked.
func ResolveLines(ctx context.Context, catalog ItemCatalog, reqs []LineRequest, purchase bool) ([]shared.DocumentLine, error) {
	lines := make([]shared.DocumentLine, 0, len(reqs))
	for idx, req := range reqs {
		line := shared.DocumentLine{Description: req.Description, Quantity: req.Quantity, VATRate: decimal.Zero, UnitPrice: decimal.Zero}
		if req.Item != "" {
			item, err := catalog.GetItemByCode(ctx, req.Item)
			if err != nil {
				return nil, fmt.Errorf("lines[%d]: %w", idx, err)
			}
			id := item.ID
			line.ItemID = &id
			line.UnitPrice = item.SalesPrice
			if purchase {
				line.UnitPrice = item.PurchasePrice
			}
			line.VATRate = item.VATRate
		}
		if req.Location != "" {
			loc, err := catalog.GetLocationByCode(ctx, req.Location)
			if err != nil {
				return nil, fmt.Errorf("lines[%d]: %w", idx, err)
			}
			id := loc.ID
			line.LocationID = &id
		}
		if req.UnitPrice != nil {
			line.UnitPrice = *req.UnitPrice
		}
		if req.VATRate != nil {
			line.VATRate = *req.VATRate
		}
		lines = append(lines, line)
	}
	return lines, nil
}
