package shared

import (
	"fmt"
	"strings"
)

// Sequence names a transactional counter in document_sequences.
type Sequence string

const (
	SeqJournal      Sequence = "journal"
	SeqSalesInvoice Sequence = "sales_invoice"
	SeqPurchaseBill Sequence = "purchase_bill"
	SeqPaymentIn    Sequence = "payment_in"
	SeqPaymentOut   Sequence = "payment_out"
	// SeqInventory is shared by receipts, issues and transfers.
	SeqInventory Sequence = "inventory"
)

// Document number prefixes.
const (
	PrefixJournal     = "JE"
	PrefixInvoice     = "INV"
	PrefixBill        = "BILL"
	PrefixPaymentIn   = "PMT-IN"
	PrefixPaymentOut  = "PMT-OUT"
	PrefixStockIn     = "STK-IN"
	PrefixStockOut    = "STK-OUT"
	PrefixStockTransf = "STK-TRF"
)

// FormatNumber renders a 1-indexed counter value as PREFIX-NNNNNN.
func FormatNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// HasPrefix reports whether number was formatted with prefix.
func HasPrefix(number, prefix string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(number)), prefix+"-")
}
