package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	AsOf                      time.Time       `json:"as_of"`
	Assets                    []ReportLine    `json:"assets"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	Liabilities               []ReportLine    `json:"liabilities"`
	TotalLiabilities          decimal.Decimal `json:"total_liabilities"`
	Equity                    []ReportLine    `json:"equity"`
	TotalEquity               decimal.Decimal `json:"total_equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	// CurrentEarnings is revenue less expenses to date. It is not part of the totals
	// until a closing entry moves it into equity.
	CurrentEarnings decimal.Decimal `json:"current_earnings"`
}

// BuildBalanceSheet aggregates balances into assets, liabilities, and equity sections.
func BuildBalanceSheet(balances []AccountBalance) BalanceSheet {
	bs := BalanceSheet{
		Assets:      []ReportLine{},
		Liabilities: []ReportLine{},
		Equity:      []ReportLine{},
	}
	var assets, liabilities, equity, earnings decimal.Decimal
	for _, acc := range balances {
		if !acc.Active {
			continue
		}
		amount := acc.Balance()
		if amount.IsZero() {
			continue
		}
		row := ReportLine{Code: acc.Code, Name: acc.Name, Amount: amount}
		switch acc.Type {
		case accounts.AccountTypeAsset:
			bs.Assets = append(bs.Assets, row)
			assets = assets.Add(amount)
		case accounts.AccountTypeLiability:
			bs.Liabilities = append(bs.Liabilities, row)
			liabilities = liabilities.Add(amount)
		case accounts.AccountTypeEquity:
			bs.Equity = append(bs.Equity, row)
			equity = equity.Add(amount)
		case accounts.AccountTypeRevenue:
			earnings = earnings.Add(amount)
		case accounts.AccountTypeExpense:
			earnings = earnings.Sub(amount)
		}
	}
	sortLines(bs.Assets)
	sortLines(bs.Liabilities)
	sortLines(bs.Equity)

	bs.TotalAssets = assets
	bs.TotalLiabilities = liabilities
	bs.TotalEquity = equity
	bs.TotalLiabilitiesAndEquity = liabilities.Add(equity)
	bs.CurrentEarnings = earnings
	return bs
}
