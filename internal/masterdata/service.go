package masterdata

import (
	"context"
	"errors"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Service manages customers, suppliers, items and locations.
type Service struct {
	repo Repository
}

// NewService creates a new master data service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Customer operations

func (s *Service) CreateCustomer(ctx context.Context, in PartyInput) (Customer, error) {
	in, err := in.normalize()
	if err != nil {
		return Customer{}, err
	}
	return s.repo.CreateCustomer(ctx, Customer{
		Code: in.Code, Name: in.Name, Email: in.Email, Phone: in.Phone,
		Address: in.Address, PaymentTermsDays: in.PaymentTermsDays,
	})
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) GetCustomerByCode(ctx context.Context, code string) (Customer, error) {
	return s.repo.GetCustomerByCode(ctx, normalizeCode(code))
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// Supplier operations

func (s *Service) CreateSupplier(ctx context.Context, in PartyInput) (Supplier, error) {
	in, err := in.normalize()
	if err != nil {
		return Supplier{}, err
	}
	return s.repo.CreateSupplier(ctx, Supplier{
		Code: in.Code, Name: in.Name, Email: in.Email, Phone: in.Phone,
		Address: in.Address, PaymentTermsDays: in.PaymentTermsDays,
	})
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) GetSupplierByCode(ctx context.Context, code string) (Supplier, error) {
	return s.repo.GetSupplierByCode(ctx, normalizeCode(code))
}

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// Item operations

func (s *Service) CreateItem(ctx context.Context, in ItemInput) (Item, error) {
	in, err := in.normalize()
	if err != nil {
		return Item{}, err
	}
	return s.repo.CreateItem(ctx, Item{
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		UnitOfMeasure: in.UnitOfMeasure,
		SalesPrice:    in.SalesPrice,
		PurchasePrice: in.PurchasePrice,
		VATRate:       in.VATRate,
		TrackStock:    in.TrackStock,
		ReorderLevel:  in.ReorderLevel,
	})
}

func (s *Service) GetItem(ctx context.Context, id int64) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) GetItemByCode(ctx context.Context, code string) (Item, error) {
	return s.repo.GetItemByCode(ctx, normalizeCode(code))
}

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.repo.ListItems(ctx)
}

// Location operations

func (s *Service) CreateLocation(ctx context.Context, in LocationInput) (Location, error) {
	in, err := in.normalize()
	if err != nil {
		return Location{}, err
	}
	return s.repo.CreateLocation(ctx, Location{Code: in.Code, Name: in.Name})
}

func (s *Service) GetLocation(ctx context.Context, id int64) (Location, error) {
	return s.repo.GetLocation(ctx, id)
}

func (s *Service) GetLocationByCode(ctx context.Context, code string) (Location, error) {
	return s.repo.GetLocationByCode(ctx, normalizeCode(code))
}

func (s *Service) ListLocations(ctx context.Context) ([]Location, error) {
	return s.repo.ListLocations(ctx)
}

// EnsureLocation returns the location with code, creating it when absent.
func (s *Service) EnsureLocation(ctx context.Context, code, name string) (Location, error) {
	loc, err := s.repo.GetLocationByCode(ctx, normalizeCode(code))
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Location{}, err
	}
	loc, err = s.CreateLocation(ctx, LocationInput{Code: code, Name: name})
	if errors.Is(err, shared.ErrDuplicateKey) {
		// lost a race with a concurrent creator
		return s.repo.GetLocationByCode(ctx, normalizeCode(code))
	}
	return loc, err
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
