package payments

import (
	"context"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Applier settles a payment against one kind of document.
type Applier interface {
	Apply(ctx context.Context, in ApplyInput) (Payment, error)
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, in ApplyInput) (Payment, error)

func (f ApplierFunc) Apply(ctx context.Context, in ApplyInput) (Payment, error) { return f(ctx, in) }

// Service dispatches payments by document number and lists them.
type Service struct {
	repo          Repository
	receipts      Applier
	disbursements Applier
}

// NewService wires the sales receipt and purchase payment orchestrators.
func NewService(repo Repository, receipts, disbursements Applier) *Service {
	return &Service{repo: repo, receipts: receipts, disbursements: disbursements}
}

// Apply routes INV- numbers to sales and BILL- numbers to purchases.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (Payment, error) {
	number := strings.ToUpper(strings.TrimSpace(in.DocumentNumber))
	switch {
	case shared.HasPrefix(number, shared.PrefixInvoice):
		return s.receipts.Apply(ctx, in)
	case shared.HasPrefix(number, shared.PrefixBill):
		return s.disbursements.Apply(ctx, in)
	default:
		return Payment{}, shared.NotFound("document", in.DocumentNumber)
	}
}

func (s *Service) Get(ctx context.Context, number string) (Payment, error) {
	return s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Payment, error) {
	return s.repo.List(ctx, filter)
}
