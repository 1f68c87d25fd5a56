package ap

import (
	"context"
	"log/slog"
	"strings"

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

// Service is the purchase orchestrator.
type Service struct {
	repo      Repository
	journals  *journals.Service
	inventory *inventory.Service
	accounts  payments.AccountLookup
	audit     shared.AuditTrail
	cfg       Config
}

// NewService wires the orchestrator; audit and logger may be nil.
func NewService(repo Repository, journals *journals.Service, inventory *inventory.Service, accounts payments.AccountLookup, audit shared.AuditPort, logger *slog.Logger, cfg Config) *Service {
	return &Service{repo: repo, journals: journals, inventory: inventory, accounts: accounts, audit: shared.NewAuditTrail(audit, logger), cfg: cfg}
}

// PostBill posts Dr inventory and VAT input / Cr creditors and receives every
// stock line at its unit price, all in one transaction.
func (s *Service) PostBill(ctx context.Context, in BillInput) (Bill, error) {
	totals, err := in.normalize(s.cfg.BaseCurrency)
	if err != nil {
		return Bill{}, err
	}
	var (
		posted Bill
		entry  journals.Entry
		stock  []inventory.Transaction
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		stock = nil
		supplier, err := tx.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if !supplier.IsActive {
			return shared.Invalid("supplier", "supplier "+supplier.Code+" is inactive")
		}
		seq, err := tx.NextNumber(ctx, shared.SeqPurchaseBill)
		if err != nil {
			return err
		}
		number := shared.FormatNumber(shared.PrefixBill, seq)

		entry, err = s.journals.PostInTx(ctx, tx, s.purchaseEntry(number, supplier.Name, in, totals))
		if err != nil {
			return err
		}
		due := in.Date.AddDate(0, 0, supplier.PaymentTermsDays)
		if in.DueDate != nil {
			due = *in.DueDate
		}
		bill, err := tx.InsertBill(ctx, Bill{
			Number:          number,
			SupplierID:      supplier.ID,
			SupplierCode:    supplier.Code,
			SupplierInvoice: in.SupplierInvoice,
			Date:            in.Date,
			DueDate:         due,
			Currency:        in.Currency,
			ExchangeRate:    in.ExchangeRate,
			Notes:           in.Notes,
			Subtotal:        totals.Subtotal,
			VATAmount:       totals.VAT,
			Total:           totals.Total,
			AmountPaid:      decimal.Zero,
			Status:          payments.StatusUnpaid,
			JournalEntryID:  entry.ID,
			JournalNumber:   entry.Number,
		})
		if err != nil {
			return err
		}
		for _, l := range in.Lines {
			line, received, err := s.postLine(ctx, tx, bill, entry.ID, l)
			if err != nil {
				return err
			}
			if received != nil {
				stock = append(stock, *received)
			}
			bill.Lines = append(bill.Lines, line)
		}
		posted = bill
		return nil
	})
	if err != nil {
		return Bill{}, err
	}
	s.journals.Notify(ctx, entry)
	s.inventory.Notify(ctx, stock...)
	s.record(ctx, "bill.post", posted.Number, map[string]any{
		"supplier": posted.SupplierCode,
		"total":    posted.Total.StringFixed(shared.MoneyScale),
		"currency": posted.Currency,
	})
	return posted, nil
}

func (s *Service) purchaseEntry(number, supplier string, in BillInput, totals shared.DocumentTotals) journals.PostingInput {
	chart := s.cfg.Chart
	lines := []journals.LineInput{
		{AccountID: chart.Inventory, Debit: totals.Subtotal, Description: "Purchases " + number},
	}
	if !totals.VAT.IsZero() {
		lines = append(lines, journals.LineInput{AccountID: chart.VATInput, Debit: totals.VAT, Description: "VAT " + number})
	}
	lines = append(lines, journals.LineInput{AccountID: chart.TradeCreditors, Credit: totals.Total, Description: "Bill " + number})
	reference := number
	if in.SupplierInvoice != "" {
		reference = number + " / " + in.SupplierInvoice
	}
	return journals.PostingInput{
		Date:         in.Date,
		Type:         journals.TypePurchaseBill,
		Reference:    reference,
		Description:  "Purchase bill from " + supplier,
		Currency:     in.Currency,
		ExchangeRate: in.ExchangeRate,
		Lines:        lines,
		Source:       &journals.Source{Module: "ap", Number: number},
	}
}

// postLine receives stock-tracked items at the line's unit price converted to
// base currency, then stores the line.
func (s *Service) postLine(ctx context.Context, tx TxRepository, bill Bill, entryID int64, l shared.DocumentLine) (BillLine, *inventory.Transaction, error) {
	net, vat := shared.LineAmounts(l.Quantity, l.UnitPrice, l.VATRate)
	line := BillLine{
		BillID:      bill.ID,
		ItemID:      l.ItemID,
		LocationID:  l.LocationID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		VATRate:     l.VATRate,
		LineNet:     net,
		LineVAT:     vat,
	}
	var received *inventory.Transaction
	if l.ItemID != nil {
		item, err := tx.GetItem(ctx, *l.ItemID)
		if err != nil {
			return BillLine{}, nil, err
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
			res, err := s.inventory.ReceiveInTx(ctx, tx, inventory.ReceiptInput{
				ItemID:         item.ID,
				LocationID:     locationID,
				Quantity:       l.Quantity,
				UnitCost:       l.UnitPrice.Mul(bill.ExchangeRate),
				Date:           bill.Date,
				Reference:      bill.Number,
				JournalEntryID: &entryID,
			})
			if err != nil {
				return BillLine{}, nil, err
			}
			received = &res.Transaction
			line.StockTxNumber = res.Transaction.Number
		}
	}
	saved, err := tx.InsertBillLine(ctx, line)
	if err != nil {
		return BillLine{}, nil, err
	}
	return saved, received, nil
}

// ApplyPayment records money paid against a bill: Dr creditors / Cr bank in the
// bill currency at the bill rate.
func (s *Service) ApplyPayment(ctx context.Context, in payments.ApplyInput) (payments.Payment, error) {
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
		bill, err := tx.GetBillForUpdate(ctx, in.DocumentNumber)
		if err != nil {
			return err
		}
		if err := payments.CheckApplicable(bill.Number, bill.Status, bill.Total, bill.AmountPaid, in.Amount); err != nil {
			return err
		}
		seq, err := tx.NextNumber(ctx, shared.SeqPaymentOut)
		if err != nil {
			return err
		}
		number := shared.FormatNumber(shared.PrefixPaymentOut, seq)
		description := in.Description
		if description == "" {
			description = "Payment made for " + bill.Number
		}
		entry, err = s.journals.PostInTx(ctx, tx, journals.PostingInput{
			Date:         in.Date,
			Type:         journals.TypePayment,
			Reference:    number,
			Description:  description,
			Currency:     bill.Currency,
			ExchangeRate: bill.ExchangeRate,
			Lines: []journals.LineInput{
				{AccountID: s.cfg.Chart.TradeCreditors, Debit: in.Amount, Description: bill.Number},
				{AccountID: bank.ID, Credit: in.Amount, Description: bill.Number},
			},
			Source: &journals.Source{Module: "payments", Number: number},
		})
		if err != nil {
			return err
		}
		paid, err = tx.InsertPayment(ctx, payments.Payment{
			Number:         number,
			Date:           in.Date,
			Direction:      payments.DirectionPayment,
			PartyType:      payments.PartySupplier,
			PartyID:        bill.SupplierID,
			DocumentNumber: bill.Number,
			Amount:         in.Amount,
			Currency:       bill.Currency,
			ExchangeRate:   bill.ExchangeRate,
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
		total := bill.AmountPaid.Add(in.Amount)
		return tx.UpdateBillPayment(ctx, bill.ID, total, payments.StatusFor(bill.Total, total))
	})
	if err != nil {
		return payments.Payment{}, err
	}
	s.journals.Notify(ctx, entry)
	s.record(ctx, "payment.make", paid.Number, map[string]any{
		"bill":   paid.DocumentNumber,
		"amount": paid.Amount.StringFixed(shared.MoneyScale),
	})
	return paid, nil
}

// GetBill returns a bill with its lines.
func (s *Service) GetBill(ctx context.Context, number string) (Bill, error) {
	return s.repo.GetBill(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *Service) ListBills(ctx context.Context, filter BillFilter) ([]Bill, error) {
	return s.repo.ListBills(ctx, filter)
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "purchases", EntityID: id, Meta: meta})
}
