package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func reportAccounts() []Account {
	return []Account{
		{Code: "1000", Name: "Cash", Type: AccountTypeAsset, IsActive: true, CurrentBalance: 1500},
		{Code: "1100", Name: "Receivables", Type: AccountTypeAsset, IsActive: true, CurrentBalance: 500},
		{Code: "2000", Name: "Payables", Type: AccountTypeLiability, IsActive: true, CurrentBalance: -700},
		{Code: "3000", Name: "Opening Balance Equity", Type: AccountTypeEquity, IsActive: true, CurrentBalance: -1000},
		{Code: "4000", Name: "Sales", Type: AccountTypeRevenue, IsActive: true, CurrentBalance: -900},
		{Code: "5000", Name: "Rent", Type: AccountTypeExpense, IsActive: true, CurrentBalance: 600},
		{Code: "9999", Name: "Retired", Type: AccountTypeAsset, IsActive: false, CurrentBalance: 123},
	}
}

func TestBuildTrialBalanceSplitsColumnsAndBalances(t *testing.T) {
	tb := BuildTrialBalance(reportAccounts())

	require.Len(t, tb.Rows, 6, "inactive accounts are excluded")
	require.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.0001)
	require.InDelta(t, 2600, tb.TotalDebit, 0.0001)

	require.Equal(t, "1000", tb.Rows[0].Code, "rows sorted by code")
	require.InDelta(t, 1500, tb.Rows[0].Debit, 0.0001)
	require.Zero(t, tb.Rows[0].Credit)

	var payables TrialBalanceRow
	for _, row := range tb.Rows {
		if row.Code == "2000" {
			payables = row
		}
	}
	require.InDelta(t, 700, payables.Credit, 0.0001)
	require.Zero(t, payables.Debit)
}

func TestBuildBalanceSheetBalances(t *testing.T) {
	bs := BuildBalanceSheet(reportAccounts())

	require.InDelta(t, 2000, bs.Assets.Total, 0.0001)
	require.InDelta(t, 700, bs.Liabilities.Total, 0.0001)
	require.InDelta(t, 1000, bs.Equity.Total, 0.0001)
	require.InDelta(t, 300, bs.CurrentEarnings, 0.0001)
	require.InDelta(t, bs.Assets.Total, bs.TotalLiabilitiesAndEquity, 0.0001,
		"assets must equal liabilities plus equity plus earnings")
}

func TestBuildProfitLoss(t *testing.T) {
	pl := BuildProfitLoss(reportAccounts())

	require.InDelta(t, 900, pl.Revenue.Total, 0.0001)
	require.InDelta(t, 600, pl.Expenses.Total, 0.0001)
	require.InDelta(t, 300, pl.NetIncome, 0.0001)
	require.Equal(t, "300.00", pl.Display)
}

func TestFormatAmountGroupsThousands(t *testing.T) {
	require.Equal(t, "1,234,567.89", FormatAmount(1234567.89))
	require.Equal(t, "-42.50", FormatAmount(-42.5))
}
