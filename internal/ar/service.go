package ar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Config carries the resolved chart and defaults the orchestrator posts with.
type Config struct {
	Chart             accounts.Chart
	BaseCurrency      string
	DefaultLocationID int64
}

// Service is the sales orchestrator. Every operation runs in one unit of work.
type Service struct {
	repo      Repository
	journals  *journals.Service
	inventory *inventory.Service
	accounts  payments.AccountLookup
	audit     shared.AuditTrail
	cfg       Config
	now       func() time.Time
}

// NewService wires the orchestrator; audit and logger may be nil.
func NewService(repo Repository, journals *journals.Service, inventory *inventory.Service, accounts payments.AccountLookup, audit shared.AuditPort, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		repo:      repo,
		journals:  journals,
		inventory: inventory,
		accounts:  accounts,
		audit:     shared.NewAuditTrail(audit, logger),
		cfg:       cfg,
		now:       time.Now,
	}
}

// committed collects what a unit of work produced so it can be announced after commit.
type committed struct {
	entries []journals.Entry
	stock   []inventory.Transaction
}

func (c committed) notify(ctx context.Context, j *journals.Service, inv *inventory.Service) {
	j.Notify(ctx, c.entries...)
	inv.Notify(ctx, c.stock...)
}

// PostInvoice posts the revenue entry, issues stock for item lines and posts one
// COGS entry per issued line. Any failure rolls everything back.
func (s *Service) PostInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	totals, err := in.normalize(s.cfg.BaseCurrency)
	if err != nil {
		return Invoice{}, err
	}
	var (
		posted Invoice
		out    committed
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		out = committed{}
		customer, err := tx.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if !customer.IsActive {
			return shared.Invalid("customer", "customer "+customer.Code+" is inactive")
		}
		seq, err := tx.NextNumber(ctx, shared.SeqSalesInvoice)
		if err != nil {
			return err
		}
		number := shared.FormatNumber(shared.PrefixInvoice, seq)

		entry, err := s.journals.PostInTx(ctx, tx, s.revenueEntry(number, customer.Name, in, totals))
		if err != nil {
			return err
		}
		out.entries = append(out.entries, entry)

		due := in.Date.AddDate(0, 0, customer.PaymentTermsDays)
		if in.DueDate != nil {
			due = *in.DueDate
		}
		inv, err := tx.InsertInvoice(ctx, Invoice{
			Number:         number,
			CustomerID:     customer.ID,
			CustomerCode:   customer.Code,
			Date:           in.Date,
			DueDate:        due,
			Currency:       in.Currency,
			ExchangeRate:   in.ExchangeRate,
			Terms:          in.Terms,
			Notes:          in.Notes,
			Subtotal:       totals.Subtotal,
			VATAmount:      totals.VAT,
			Total:          totals.Total,
			AmountPaid:     decimal.Zero,
			Status:         payments.StatusUnpaid,
			JournalEntryID: entry.ID,
			JournalNumber:  entry.Number,
		})
		if err != nil {
			return err
		}

		for _, l := range in.Lines {
			line, cogs, stock, err := s.postLine(ctx, tx, inv, entry.ID, l)
			if err != nil {
				return err
			}
			if cogs != nil {
				out.entries = append(out.entries, *cogs)
			}
			if stock != nil {
				out.stock = append(out.stock, *stock)
			}
			inv.Lines = append(inv.Lines, line)
		}
		posted = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	out.notify(ctx, s.journals, s.inventory)
	s.record(ctx, "invoice.post", posted.Number, map[string]any{
		"customer": posted.CustomerCode,
		"total":    posted.Total.StringFixed(shared.MoneyScale),
		"currency": posted.Currency,
	})
	return posted, nil
}

func (s *Service) revenueEntry(number, customer string, in InvoiceInput, totals shared.DocumentTotals) journals.PostingInput {
	chart := s.cfg.Chart
	lines := []journals.LineInput{
		{AccountID: chart.TradeDebtors, Debit: totals.Total, Description: "Invoice " + number},
		{AccountID: chart.ProductSales, Credit: totals.Subtotal, Description: "Sales " + number},
	}
	if !totals.VAT.IsZero() {
		lines = append(lines, journals.LineInput{AccountID: chart.VATOutput, Credit: totals.VAT, Description: "VAT " + number})
	}
	return journals.PostingInput{
		Date:         in.Date,
		Type:         journals.TypeSalesInvoice,
		Reference:    number,
		Description:  "Sales invoice to " + customer,
		Currency:     in.Currency,
		ExchangeRate: in.ExchangeRate,
		Lines:        lines,
		Source:       &journals.Source{Module: "ar", Number: number},
	}
}

// postLine issues stock for item lines, posts the matching COGS entry in base
// currency at the returned cost basis, and stores the line.
func (s *Service) postLine(ctx context.Context, tx TxRepository, inv Invoice, entryID int64, l shared.DocumentLine) (InvoiceLine, *journals.Entry, *inventory.Transaction, error) {
	net, vat := shared.LineAmounts(l.Quantity, l.UnitPrice, l.VATRate)
	line := InvoiceLine{
		InvoiceID:   inv.ID,
		ItemID:      l.ItemID,
		LocationID:  l.LocationID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		VATRate:     l.VATRate,
		LineNet:     net,
		LineVAT:     vat,
		CostBasis:   decimal.Zero,
		CostValue:   decimal.Zero,
	}
	var (
		cogs  *journals.Entry
		stock *inventory.Transaction
	)
	if l.ItemID != nil {
		item, err := tx.GetItem(ctx, *l.ItemID)
		if err != nil {
			return InvoiceLine{}, nil, nil, err
		}
		if line.Description == "" {
			line.Description = item.Name
		}
		if item.TrackStock {
			locationID := s.cfg.DefaultLocationID
			if l.LocationID != nil {
				locationID = *l.LocationID
			}
			line.LocationID = &locationID
			issued, err := s.inventory.IssueInTx(ctx, tx, inventory.IssueInput{
				ItemID:         item.ID,
				LocationID:     locationID,
				Quantity:       l.Quantity,
				Date:           inv.Date,
				Reference:      inv.Number,
				JournalEntryID: &entryID,
			})
			if err != nil {
				return InvoiceLine{}, nil, nil, err
			}
			stock = &issued.Transaction
			line.CostBasis = issued.UnitCost
			line.CostValue = issued.Value
			line.StockTxNumber = issued.Transaction.Number

			if issued.Value.IsPositive() {
				entry, err := s.journals.PostInTx(ctx, tx, journals.PostingInput{
					Date:         inv.Date,
					Type:         journals.TypeCOGS,
					Reference:    inv.Number,
					Description:  fmt.Sprintf("COGS - %s - %s", inv.Number, item.Code),
					Currency:     s.cfg.BaseCurrency,
					ExchangeRate: decimal.NewFromInt(1),
					Lines: []journals.LineInput{
						{AccountID: s.cfg.Chart.COGS, Debit: issued.Value, Description: "COGS " + item.Code},
						{AccountID: s.cfg.Chart.Inventory, Credit: issued.Value, Description: "Stock " + item.Code},
					},
					Source: &journals.Source{Module: "ar", Number: inv.Number},
				})
				if err != nil {
					return InvoiceLine{}, nil, nil, err
				}
				cogs = &entry
				line.COGSEntryNumber = entry.Number
			}
		}
	}
	saved, err := tx.InsertInvoiceLine(ctx, line)
	if err != nil {
		return InvoiceLine{}, nil, nil, err
	}
	return saved, cogs, stock, nil
}

// ApplyReceipt records money received against an invoice: Dr bank / Cr debtors in
// the invoice currency at the invoice rate. Status follows the cumulative amount paid.
func (s *Service) ApplyReceipt(ctx context.Context, in payments.ApplyInput) (payments.Payment, error) {
	if err := in.Normalize(); err != nil {
		return payments.Payment{}, err
	}
	bank, err := payments.ResolveBank(ctx, s.accounts, in.BankAccount)
	if err != nil {
		return payments.Payment{}, err
	}
	var (
		paid  payments.Payment
		entry journals.Entry
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, in.DocumentNumber)
		if err != nil {
			return err
		}
		if err := payments.CheckApplicable(inv.Number, inv.Status, inv.Total, inv.AmountPaid, in.Amount); err != nil {
			return err
		}
		seq, err := tx.NextNumber(ctx, shared.SeqPaymentIn)
		if err != nil {
			return err
		}
		number := shared.FormatNumber(shared.PrefixPaymentIn, seq)
		description := in.Description
		if description == "" {
			description = "Payment received for " + inv.Number
		}
		entry, err = s.journals.PostInTx(ctx, tx, journals.PostingInput{
			Date:         in.Date,
			Type:         journals.TypePayment,
			Reference:    number,
			Description:  description,
			Currency:     inv.Currency,
			ExchangeRate: inv.ExchangeRate,
			Lines: []journals.LineInput{
				{AccountID: bank.ID, Debit: in.Amount, Description: inv.Number},
				{AccountID: s.cfg.Chart.TradeDebtors, Credit: in.Amount, Description: inv.Number},
			},
			Source: &journals.Source{Module: "payments", Number: number},
		})
		if err != nil {
			return err
		}
		paid, err = tx.InsertPayment(ctx, payments.Payment{
			Number:         number,
			Date:           in.Date,
			Direction:      payments.DirectionReceipt,
			PartyType:      payments.PartyCustomer,
			PartyID:        inv.CustomerID,
			DocumentNumber: inv.Number,
			Amount:         in.Amount,
			Currency:       inv.Currency,
			ExchangeRate:   inv.ExchangeRate,
			Method:         in.Method,
			BankAccountID:  bank.ID,
			Reference:      in.Reference,
			Description:    description,
			JournalEntryID: entry.ID,
			JournalNumber:  entry.Number,
		})
		if err != nil {
			return err
		}
		total := inv.AmountPaid.Add(in.Amount)
		return tx.UpdateInvoicePayment(ctx, inv.ID, total, payments.StatusFor(inv.Total, total))
	})
	if err != nil {
		return payments.Payment{}, err
	}
	s.journals.Notify(ctx, entry)
	s.record(ctx, "payment.receive", paid.Number, map[string]any{
		"invoice": paid.DocumentNumber,
		"amount":  paid.Amount.StringFixed(shared.MoneyScale),
	})
	return paid, nil
}

// GetInvoice returns an invoice with its lines.
func (s *Service) GetInvoice(ctx context.Context, number string) (Invoice, error) {
	return s.repo.GetInvoice(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *Service) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// Aging buckets outstanding invoices by days past due at asOf.
func (s *Service) Aging(ctx context.Context, asOf time.Time) (AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	to := shared.Day(asOf)
	invoices, err := s.repo.ListInvoices(ctx, InvoiceFilter{To: &to})
	if err != nil {
		return AgingReport{}, err
	}
	return BuildAging(invoices, to), nil
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "sales", EntityID: id, Meta: meta})
}
