package accounts

// Well-known account codes the posting rules depend on.
const (
	CodeTradeDebtors   = "1121"
	CodeInventory      = "1131"
	CodeTradeCreditors = "2111"
	CodeVATOutput      = "2121"
	CodeVATInput       = "2122"
	CodeProductSales   = "4110"
	CodeCOGS           = "5100"
)

// Chart resolves the well-known codes to account ids.
type Chart struct {
	TradeDebtors   int64
	Inventory      int64
	TradeCreditors int64
	VATOutput      int64
	VATInput       int64
	ProductSales   int64
	COGS           int64
}

func (c *Chart) targets() []struct {
	code string
	id   *int64
} {
	return []struct {
		code string
		id   *int64
	}{
		{CodeTradeDebtors, &c.TradeDebtors},
		{CodeInventory, &c.Inventory},
		{CodeTradeCreditors, &c.TradeCreditors},
		{CodeVATOutput, &c.VATOutput},
		{CodeVATInput, &c.VATInput},
		{CodeProductSales, &c.ProductSales},
		{CodeCOGS, &c.COGS},
	}
}

// DefaultAccount is a row of the seeded chart.
type DefaultAccount struct {
	Code       string
	Name       string
	Type       AccountType
	ParentCode string
}

// DefaultChart is the UK small-business chart seeded by EnsureDefaults. Parents precede children.
var DefaultChart = []DefaultAccount{
	{"1000", "Assets", AccountTypeAsset, ""},
	{"1100", "Current Assets", AccountTypeAsset, "1000"},
	{"1110", "Cash and Bank", AccountTypeAsset, "1100"},
	{"1111", "Petty Cash", AccountTypeAsset, "1110"},
	{"1112", "Main Bank Account", AccountTypeAsset, "1110"},
	{"1120", "Accounts Receivable", AccountTypeAsset, "1100"},
	{"1121", "Trade Debtors", AccountTypeAsset, "1120"},
	{"1130", "Inventory", AccountTypeAsset, "1100"},
	{"1131", "Stock - Finished Goods", AccountTypeAsset, "1130"},
	{"1132", "Stock - Raw Materials", AccountTypeAsset, "1130"},
	{"1140", "Prepayments", AccountTypeAsset, "1100"},
	{"1200", "Fixed Assets", AccountTypeAsset, "1000"},
	{"1210", "Property, Plant & Equipment", AccountTypeAsset, "1200"},
	{"1211", "Office Equipment", AccountTypeAsset, "1210"},
	{"1212", "Furniture & Fixtures", AccountTypeAsset, "1210"},
	{"1213", "Motor Vehicles", AccountTypeAsset, "1210"},
	{"1220", "Accumulated Depreciation", AccountTypeAsset, "1200"},

	{"2000", "Liabilities", AccountTypeLiability, ""},
	{"2100", "Current Liabilities", AccountTypeLiability, "2000"},
	{"2110", "Accounts Payable", AccountTypeLiability, "2100"},
	{"2111", "Trade Creditors", AccountTypeLiability, "2110"},
	{"2120", "VAT Payable", AccountTypeLiability, "2100"},
	{"2121", "VAT Output", AccountTypeLiability, "2120"},
	{"2122", "VAT Input", AccountTypeLiability, "2120"},
	{"2130", "Accruals", AccountTypeLiability, "2100"},
	{"2200", "Long-term Liabilities", AccountTypeLiability, "2000"},
	{"2210", "Bank Loans", AccountTypeLiability, "2200"},

	{"3000", "Equity", AccountTypeEquity, ""},
	{"3100", "Share Capital", AccountTypeEquity, "3000"},
	{"3200", "Retained Earnings", AccountTypeEquity, "3000"},
	{"3300", "Current Year Earnings", AccountTypeEquity, "3000"},

	{"4000", "Revenue", AccountTypeRevenue, ""},
	{"4100", "Sales Revenue", AccountTypeRevenue, "4000"},
	{"4110", "Product Sales", AccountTypeRevenue, "4100"},
	{"4120", "Service Revenue", AccountTypeRevenue, "4100"},
	{"4200", "Other Income", AccountTypeRevenue, "4000"},

	{"5000", "Cost of Sales", AccountTypeExpense, ""},
	{"5100", "Cost of Goods Sold", AccountTypeExpense, "5000"},

	{"6000", "Operating Expenses", AccountTypeExpense, ""},
	{"6100", "Administrative Expenses", AccountTypeExpense, "6000"},
	{"6110", "Salaries & Wages", AccountTypeExpense, "6100"},
	{"6120", "Rent Expense", AccountTypeExpense, "6100"},
	{"6130", "Utilities", AccountTypeExpense, "6100"},
	{"6140", "Office Supplies", AccountTypeExpense, "6100"},
	{"6150", "Insurance", AccountTypeExpense, "6100"},
	{"6200", "Marketing & Advertising", AccountTypeExpense, "6000"},
	{"6300", "Professional Fees", AccountTypeExpense, "6000"},
	{"6310", "Accounting & Legal Fees", AccountTypeExpense, "6300"},
	{"6400", "Depreciation Expense", AccountTypeExpense, "6000"},
	{"6500", "Finance Costs", AccountTypeExpense, "6000"},
	{"6510", "Bank Charges", AccountTypeExpense, "6500"},
	{"6520", "Interest Expense", AccountTypeExpense, "6500"},
}
