package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// ReportLine is an account amount inside a statement section.
type ReportLine struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ProfitAndLoss contains the structured output for the report.
type ProfitAndLoss struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []ReportLine    `json:"revenue"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	COGS          []ReportLine    `json:"cogs"`
	TotalCOGS     decimal.Decimal `json:"total_cogs"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	Expenses      []ReportLine    `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
}

// BuildProfitAndLoss groups period movements of active revenue and expense accounts.
// Expense accounts are split by their category flag, never by code.
func BuildProfitAndLoss(balances []AccountBalance) ProfitAndLoss {
	pl := ProfitAndLoss{
		Revenue:  []ReportLine{},
		COGS:     []ReportLine{},
		Expenses: []ReportLine{},
	}
	var revenue, cogs, expenses decimal.Decimal
	for _, acc := range balances {
		if !acc.Active {
			continue
		}
		amount := acc.Balance()
		if amount.IsZero() {
			continue
		}
		row := ReportLine{Code: acc.Code, Name: acc.Name, Amount: amount}
		switch {
		case acc.Type == accounts.AccountTypeRevenue:
			pl.Revenue = append(pl.Revenue, row)
			revenue = revenue.Add(amount)
		case acc.Type == accounts.AccountTypeExpense && acc.Category == accounts.ExpenseCategoryCOGS:
			pl.COGS = append(pl.COGS, row)
			cogs = cogs.Add(amount)
		case acc.Type == accounts.AccountTypeExpense:
			pl.Expenses = append(pl.Expenses, row)
			expenses = expenses.Add(amount)
		}
	}
	sortLines(pl.Revenue)
	sortLines(pl.COGS)
	sortLines(pl.Expenses)

	pl.TotalRevenue = revenue
	pl.TotalCOGS = cogs
	pl.TotalExpenses = expenses
	pl.GrossProfit = revenue.Sub(cogs)
	pl.NetProfit = pl.GrossProfit.Sub(expenses)
	return pl
}

func sortLines(lines []ReportLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].Code < lines[j].Code })
}
