package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository persists master data.
type Repository interface {
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	GetCustomerByCode(ctx context.Context, code string) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)

	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	GetSupplierByCode(ctx context.Context, code string) (Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)

	CreateItem(ctx context.Context, item Item) (Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	GetItemByCode(ctx context.Context, code string) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)

	CreateLocation(ctx context.Context, loc Location) (Location, error)
	GetLocation(ctx context.Context, id int64) (Location, error)
	GetLocationByCode(ctx context.Context, code string) (Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
}

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new master data repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

const (
	partyColumns    = `id, code, name, email, phone, address, payment_terms_days, is_active, created_at`
	itemColumns     = `id, code, name, description, unit_of_measure, sales_price, purchase_price, vat_rate, track_stock, reorder_level, is_active, created_at`
	locationColumns = `id, code, name, is_active, created_at`
)

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PaymentTermsDays, &c.IsActive, &c.CreatedAt)
	return c, err
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Email, &s.Phone, &s.Address, &s.PaymentTermsDays, &s.IsActive, &s.CreatedAt)
	return s, err
}

func scanItem(row pgx.Row) (Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Description, &i.UnitOfMeasure, &i.SalesPrice, &i.PurchasePrice,
		&i.VATRate, &i.TrackStock, &i.ReorderLevel, &i.IsActive, &i.CreatedAt)
	return i, err
}

func scanLocation(row pgx.Row) (Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.IsActive, &l.CreatedAt)
	return l, err
}

// one translates a single-row lookup, mapping no rows to NotFound.
func one[T any](row pgx.Row, scan func(pgx.Row) (T, error), entity string, key any) (T, error) {
	v, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return v, shared.NotFound(entity, key)
	}
	return v, err
}

func many[T any](ctx context.Context, q db.Querier, sql string, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func inserted[T any](row pgx.Row, scan func(pgx.Row) (T, error), entity, code string) (T, error) {
	v, err := scan(row)
	if _, ok := db.UniqueViolation(err); ok {
		return v, shared.DuplicateKey(entity, code)
	}
	return v, err
}

// Customer operations

func (r *repo) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO customers (code, name, email, phone, address, payment_terms_days, is_active)
VALUES ($1,$2,$3,$4,$5,$6,TRUE) RETURNING `+partyColumns, c.Code, c.Name, c.Email, c.Phone, c.Address, c.PaymentTermsDays)
	return inserted(row, scanCustomer, "customer", c.Code)
}

func (r *repo) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return LoadCustomer(ctx, r.pool, id)
}

func (r *repo) GetCustomerByCode(ctx context.Context, code string) (Customer, error) {
	return one(r.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM customers WHERE code=$1`, code), scanCustomer, "customer", code)
}

func (r *repo) ListCustomers(ctx context.Context) ([]Customer, error) {
	return many(ctx, r.pool, `SELECT `+partyColumns+` FROM customers ORDER BY code`, scanCustomer)
}

// Supplier operations

func (r *repo) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO suppliers (code, name, email, phone, address, payment_terms_days, is_active)
VALUES ($1,$2,$3,$4,$5,$6,TRUE) RETURNING `+partyColumns, s.Code, s.Name, s.Email, s.Phone, s.Address, s.PaymentTermsDays)
	return inserted(row, scanSupplier, "supplier", s.Code)
}

func (r *repo) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return LoadSupplier(ctx, r.pool, id)
}

func (r *repo) GetSupplierByCode(ctx context.Context, code string) (Supplier, error) {
	return one(r.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM suppliers WHERE code=$1`, code), scanSupplier, "supplier", code)
}

func (r *repo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return many(ctx, r.pool, `SELECT `+partyColumns+` FROM suppliers ORDER BY code`, scanSupplier)
}

// Item operations

func (r *repo) CreateItem(ctx context.Context, i Item) (Item, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO items (code, name, description, unit_of_measure, sales_price, purchase_price, vat_rate, track_stock, reorder_level, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE) RETURNING `+itemColumns,
		i.Code, i.Name, i.Description, i.UnitOfMeasure, i.SalesPrice, i.PurchasePrice, i.VATRate, i.TrackStock, i.ReorderLevel)
	return inserted(row, scanItem, "item", i.Code)
}

func (r *repo) GetItem(ctx context.Context, id int64) (Item, error) {
	return LoadItem(ctx, r.pool, id)
}

func (r *repo) GetItemByCode(ctx context.Context, code string) (Item, error) {
	return one(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE code=$1`, code), scanItem, "item", code)
}

func (r *repo) ListItems(ctx context.Context) ([]Item, error) {
	return many(ctx, r.pool, `SELECT `+itemColumns+` FROM items ORDER BY code`, scanItem)
}

// Location operations

func (r *repo) CreateLocation(ctx context.Context, l Location) (Location, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO locations (code, name, is_active) VALUES ($1,$2,TRUE) RETURNING `+locationColumns, l.Code, l.Name)
	return inserted(row, scanLocation, "location", l.Code)
}

func (r *repo) GetLocation(ctx context.Context, id int64) (Location, error) {
	return LoadLocation(ctx, r.pool, id)
}

func (r *repo) GetLocationByCode(ctx context.Context, code string) (Location, error) {
	return one(r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE code=$1`, code), scanLocation, "location", code)
}

func (r *repo) ListLocations(ctx context.Context) ([]Location, error) {
	return many(ctx, r.pool, `SELECT `+locationColumns+` FROM locations ORDER BY code`, scanLocation)
}

// LoadCustomer reads a customer through any querier, including an open transaction.
func LoadCustomer(ctx context.Context, q db.Querier, id int64) (Customer, error) {
	return one(q.QueryRow(ctx, `SELECT `+partyColumns+` FROM customers WHERE id=$1`, id), scanCustomer, "customer", id)
}

// LoadSupplier reads a supplier through any querier.
func LoadSupplier(ctx context.Context, q db.Querier, id int64) (Supplier, error) {
	return one(q.QueryRow(ctx, `SELECT `+partyColumns+` FROM suppliers WHERE id=$1`, id), scanSupplier, "supplier", id)
}

// LoadItem reads an item through any querier.
func LoadItem(ctx context.Context, q db.Querier, id int64) (Item, error) {
	return one(q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id), scanItem, "item", id)
}

// LoadLocation reads a location through any querier.
func LoadLocation(ctx context.Context, q db.Querier, id int64) (Location, error) {
	return one(q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id=$1`, id), scanLocation, "location", id)
}
