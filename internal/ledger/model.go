package ledger

import "time"

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// DebitNormal reports whether the type conventionally carries a debit balance.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Valid reports whether the type is a known category.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// OpeningEquityCode is the well-known account receiving the balancing side
// of opening-balance entries. Created on first use per company.
const OpeningEquityCode = "3000"

// Account models a chart of accounts node. CurrentBalance is maintained in
// signed debit convention: debits increase it, credits decrease it, for
// every account type. Credit-normal accounts therefore carry negative values.
type Account struct {
	ID             int64
	CompanyID      int64
	Code           string
	Name           string
	Type           AccountType
	Subtype        string
	ParentID       *int64
	IsActive       bool
	OpeningBalance float64
	CurrentBalance float64
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EntryStatus enumerates journal lifecycle values.
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "DRAFT"
	EntryStatusPosted   EntryStatus = "POSTED"
	EntryStatusReversed EntryStatus = "REVERSED"
)

// ReferenceTypeReversal links a reversing entry back to its original.
const ReferenceTypeReversal = "reversal"

// JournalEntry captures one balanced business event.
type JournalEntry struct {
	ID            int64
	CompanyID     int64
	EntryNumber   string
	Date          time.Time
	ReferenceType string
	ReferenceID   string
	Description   string
	TotalDebit    float64
	TotalCredit   float64
	Status        EntryStatus
	PostedAt      *time.Time
	CreatedBy     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []JournalLine
}

// JournalLine stores a debit or credit amount against an account.
// Exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	ID          int64
	EntryID     int64
	AccountID   int64
	AccountCode string
	AccountName string
	AccountType AccountType
	Description string
	Debit       float64
	Credit      float64
	LineNumber  int
}
