package memory

import (
	"context"
	"sort"

	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

type masterRepo struct{ s *Store }

// create appends v to the table picked by rows unless code is taken.
func create[T identified](ctx context.Context, s *Store, rows func(*state) *[]T, codeOf func(T) string, entity string, build func(id int64, t *tx) T) (T, error) {
	var created T
	err := s.withTx(ctx, func(t *tx) error {
		table := rows(t.st)
		v := build(int64(len(*table)+1), t)
		for _, existing := range *table {
			if codeOf(existing) == codeOf(v) {
				return shared.DuplicateKey(entity, codeOf(v))
			}
		}
		*table = append(*table, v)
		created = v
		return nil
	})
	return created, err
}

func byCode[T identified](s *Store, rows func(*state) []T, codeOf func(T) string, entity, code string) (T, error) {
	var (
		found T
		ok    bool
	)
	s.read(func(st *state) {
		for _, v := range rows(st) {
			if codeOf(v) == code {
				found, ok = v, true
				return
			}
		}
	})
	if !ok {
		return found, shared.NotFound(entity, code)
	}
	return found, nil
}

func list[T identified](s *Store, rows func(*state) []T, codeOf func(T) string) []T {
	var out []T
	s.read(func(st *state) { out = append(out, rows(st)...) })
	sort.Slice(out, func(i, j int) bool { return codeOf(out[i]) < codeOf(out[j]) })
	return out
}

func get[T identified](s *Store, rows func(*state) []T, entity string, id int64) (T, error) {
	var (
		v   T
		err error
	)
	s.read(func(st *state) { v, err = byID(rows(st), id, entity) })
	return v, err
}

var (
	customers    = func(st *state) []masterdata.Customer { return st.customers }
	customersRef = func(st *state) *[]masterdata.Customer { return &st.customers }
	customerCode = func(c masterdata.Customer) string { return c.Code }

	suppliers    = func(st *state) []masterdata.Supplier { return st.suppliers }
	suppliersRef = func(st *state) *[]masterdata.Supplier { return &st.suppliers }
	supplierCode = func(s masterdata.Supplier) string { return s.Code }

	items    = func(st *state) []masterdata.Item { return st.items }
	itemsRef = func(st *state) *[]masterdata.Item { return &st.items }
	itemCode = func(i masterdata.Item) string { return i.Code }

	locations    = func(st *state) []masterdata.Location { return st.locations }
	locationsRef = func(st *state) *[]masterdata.Location { return &st.locations }
	locationCode = func(l masterdata.Location) string { return l.Code }
)

func (r masterRepo) CreateCustomer(ctx context.Context, c masterdata.Customer) (masterdata.Customer, error) {
	return create(ctx, r.s, customersRef, customerCode, "customer", func(id int64, t *tx) masterdata.Customer {
		c.ID, c.IsActive, c.CreatedAt = id, true, t.now()
		return c
	})
}

func (r masterRepo) GetCustomer(_ context.Context, id int64) (masterdata.Customer, error) {
	return get(r.s, customers, "customer", id)
}

func (r masterRepo) GetCustomerByCode(_ context.Context, code string) (masterdata.Customer, error) {
	return byCode(r.s, customers, customerCode, "customer", code)
}

func (r masterRepo) ListCustomers(context.Context) ([]masterdata.Customer, error) {
	return list(r.s, customers, customerCode), nil
}

func (r masterRepo) CreateSupplier(ctx context.Context, s masterdata.Supplier) (masterdata.Supplier, error) {
	return create(ctx, r.s, suppliersRef, supplierCode, "supplier", func(id int64, t *tx) masterdata.Supplier {
		s.ID, s.IsActive, s.CreatedAt = id, true, t.now()
		return s
	})
}

func (r masterRepo) GetSupplier(_ context.Context, id int64) (masterdata.Supplier, error) {
	return get(r.s, suppliers, "supplier", id)
}

func (r masterRepo) GetSupplierByCode(_ context.Context, code string) (masterdata.Supplier, error) {
	return byCode(r.s, suppliers, supplierCode, "supplier", code)
}

func (r masterRepo) ListSuppliers(context.Context) ([]masterdata.Supplier, error) {
	return list(r.s, suppliers, supplierCode), nil
}

func (r masterRepo) CreateItem(ctx context.Context, i masterdata.Item) (masterdata.Item, error) {
	return create(ctx, r.s, itemsRef, itemCode, "item", func(id int64, t *tx) masterdata.Item {
		i.ID, i.IsActive, i.CreatedAt = id, true, t.now()
		return i
	})
}

func (r masterRepo) GetItem(_ context.Context, id int64) (masterdata.Item, error) {
	return get(r.s, items, "item", id)
}

func (r masterRepo) GetItemByCode(_ context.Context, code string) (masterdata.Item, error) {
	return byCode(r.s, items, itemCode, "item", code)
}

func (r masterRepo) ListItems(context.Context) ([]masterdata.Item, error) {
	return list(r.s, items, itemCode), nil
}

func (r masterRepo) CreateLocation(ctx context.Context, l masterdata.Location) (masterdata.Location, error) {
	return create(ctx, r.s, locationsRef, locationCode, "location", func(id int64, t *tx) masterdata.Location {
		l.ID, l.IsActive, l.CreatedAt = id, true, t.now()
		return l
	})
}

func (r masterRepo) GetLocation(_ context.Context, id int64) (masterdata.Location, error) {
	return get(r.s, locations, "location", id)
}

func (r masterRepo) GetLocationByCode(_ context.Context, code string) (masterdata.Location, error) {
	return byCode(r.s, locations, locationCode, "location", code)
}

func (r masterRepo) ListLocations(context.Context) ([]masterdata.Location, error) {
	return list(r.s, locations, locationCode), nil
}
