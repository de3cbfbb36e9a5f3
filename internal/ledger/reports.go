package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a monetary value with thousand separators for
// report presentation.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// TrialBalanceRow presents one account with its balance split into the
// debit or credit column depending on the stored sign.
type TrialBalanceRow struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`
}

// TrialBalance lists every active account with debit/credit presentation.
type TrialBalance struct {
	Rows          []TrialBalanceRow `json:"rows"`
	TotalDebit    float64           `json:"total_debit"`
	TotalCredit   float64           `json:"total_credit"`
	DebitDisplay  string            `json:"total_debit_display"`
	CreditDisplay string            `json:"total_credit_display"`
}

// BuildTrialBalance converts accounts into trial balance presentation.
// Positive stored balances land in the debit column, negative in credit.
func BuildTrialBalance(accounts []Account) TrialBalance {
	var tb TrialBalance
	for _, acc := range accounts {
		if !acc.IsActive {
			continue
		}
		row := TrialBalanceRow{Code: acc.Code, Name: acc.Name, Type: string(acc.Type)}
		if acc.CurrentBalance >= 0 {
			row.Debit = acc.CurrentBalance
		} else {
			row.Credit = -acc.CurrentBalance
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.DebitDisplay = FormatAmount(tb.TotalDebit)
	tb.CreditDisplay = FormatAmount(tb.TotalCredit)
	return tb
}

// ReportSection groups accounts of one classification.
type ReportSection struct {
	Accounts []ReportLine `json:"accounts"`
	Total    float64      `json:"total"`
}

// ReportLine is a single account amount in a report section.
type ReportLine struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// BalanceSheet presents assets against liabilities and equity. Credit-normal
// sections are negated out of debit convention so they display positive.
type BalanceSheet struct {
	Assets                    ReportSection `json:"assets"`
	Liabilities               ReportSection `json:"liabilities"`
	Equity                    ReportSection `json:"equity"`
	CurrentEarnings           float64       `json:"current_earnings"`
	TotalLiabilitiesAndEquity float64       `json:"total_liabilities_and_equity"`
}

// BuildBalanceSheet classifies account balances using the same sign rules
// as posting.
func BuildBalanceSheet(accounts []Account) BalanceSheet {
	var bs BalanceSheet
	var revenue, expense float64
	for _, acc := range accounts {
		if !acc.IsActive {
			continue
		}
		switch acc.Type {
		case AccountTypeAsset:
			appendLine(&bs.Assets, acc, acc.CurrentBalance)
		case AccountTypeLiability:
			appendLine(&bs.Liabilities, acc, -acc.CurrentBalance)
		case AccountTypeEquity:
			appendLine(&bs.Equity, acc, -acc.CurrentBalance)
		case AccountTypeRevenue:
			revenue += -acc.CurrentBalance
		case AccountTypeExpense:
			expense += acc.CurrentBalance
		}
	}
	bs.CurrentEarnings = revenue - expense
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total + bs.Equity.Total + bs.CurrentEarnings
	return bs
}

// ProfitLoss presents revenue against expenses.
type ProfitLoss struct {
	Revenue   ReportSection `json:"revenue"`
	Expenses  ReportSection `json:"expenses"`
	NetIncome float64       `json:"net_income"`
	Display   string        `json:"net_income_display"`
}

// BuildProfitLoss aggregates revenue and expense balances.
func BuildProfitLoss(accounts []Account) ProfitLoss {
	var pl ProfitLoss
	for _, acc := range accounts {
		if !acc.IsActive {
			continue
		}
		switch acc.Type {
		case AccountTypeRevenue:
			appendLine(&pl.Revenue, acc, -acc.CurrentBalance)
		case AccountTypeExpense:
			appendLine(&pl.Expenses, acc, acc.CurrentBalance)
		}
	}
	pl.NetIncome = pl.Revenue.Total - pl.Expenses.Total
	pl.Display = FormatAmount(pl.NetIncome)
	return pl
}

func appendLine(section *ReportSection, acc Account, amount float64) {
	section.Accounts = append(section.Accounts, ReportLine{Code: acc.Code, Name: acc.Name, Amount: amount})
	section.Total += amount
}

// TrialBalance serves the trial balance, cached per company until the next
// posting bumps the report version.
func (s *Service) TrialBalance(ctx context.Context, companyID int64) (TrialBalance, error) {
	var tb TrialBalance
	err := s.cachedReport(ctx, companyID, "tb", &tb, func(ctx context.Context) (any, error) {
		accounts, err := s.repo.ListAccounts(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(accounts), nil
	})
	return tb, err
}

// BalanceSheet serves the balance sheet view.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64) (BalanceSheet, error) {
	var bs BalanceSheet
	err := s.cachedReport(ctx, companyID, "bs", &bs, func(ctx context.Context) (any, error) {
		accounts, err := s.repo.ListAccounts(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(accounts), nil
	})
	return bs, err
}

// ProfitLoss serves the profit and loss view.
func (s *Service) ProfitLoss(ctx context.Context, companyID int64) (ProfitLoss, error) {
	var pl ProfitLoss
	err := s.cachedReport(ctx, companyID, "pl", &pl, func(ctx context.Context) (any, error) {
		accounts, err := s.repo.ListAccounts(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return BuildProfitLoss(accounts), nil
	})
	return pl, err
}

func (s *Service) cachedReport(ctx context.Context, companyID int64, name string, dest any, loader func(context.Context) (any, error)) error {
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	key, err := s.cache.BuildKey(ctx, "ledger", name, fmt.Sprintf("%d", companyID))
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}
