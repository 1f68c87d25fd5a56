package masterdata

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Customer represents a party invoiced by sales.
type Customer struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// Supplier represents a party billing purchases.
type Supplier struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// Item is a product or service line. Only TrackStock items move inventory.
type Item struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	TrackStock    bool            `json:"track_stock"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Location is a stock-holding place.
type Location struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// PartyInput creates a customer or supplier.
type PartyInput struct {
	Code             string
	Name             string
	Email            string
	Phone            string
	Address          string
	PaymentTermsDays int
}

func (in PartyInput) normalize() (PartyInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Code == "" {
		return in, shared.Invalid("code", "is required")
	}
	if in.Name == "" {
		return in, shared.Invalid("name", "is required")
	}
	if in.PaymentTermsDays < 0 {
		return in, shared.Invalid("payment_terms_days", "must not be negative")
	}
	return in, nil
}

// ItemInput creates an item.
type ItemInput struct {
	Code          string
	Name          string
	Description   string
	UnitOfMeasure string
	SalesPrice    decimal.Decimal
	PurchasePrice decimal.Decimal
	VATRate       decimal.Decimal
	TrackStock    bool
	ReorderLevel  decimal.Decimal
}

func (in ItemInput) normalize() (ItemInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.UnitOfMeasure = strings.TrimSpace(in.UnitOfMeasure)
	if in.Code == "" {
		return in, shared.Invalid("code", "is required")
	}
	if in.Name == "" {
		return in, shared.Invalid("name", "is required")
	}
	if in.UnitOfMeasure == "" {
		in.UnitOfMeasure = "EA"
	}
	if in.SalesPrice.IsNegative() || in.PurchasePrice.IsNegative() {
		return in, shared.Invalid("price", "must not be negative")
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return in, shared.Invalid("vat_rate", "must be between 0 and 100")
	}
	if in.ReorderLevel.IsNegative() {
		return in, shared.Invalid("reorder_level", "must not be negative")
	}
	in.SalesPrice = shared.Round2(in.SalesPrice)
	in.PurchasePrice = in.PurchasePrice.Round(shared.CostScale)
	in.ReorderLevel = in.ReorderLevel.Round(shared.QuantityScale)
	return in, nil
}

// LocationInput creates a location.
type LocationInput struct {
	Code string
	Name string
}

func (in LocationInput) normalize() (LocationInput, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return in, shared.Invalid("code", "is required")
	}
	if in.Name == "" {
		in.Name = in.Code
	}
	return in, nil
}
