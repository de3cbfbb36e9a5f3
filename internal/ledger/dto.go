package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// CreateAccountRequest groups fields to create a chart of accounts node.
type CreateAccountRequest struct {
	CompanyID      int64   `json:"company_id" validate:"required,gt=0"`
	Code           string  `json:"code" validate:"required,max=20"`
	Name           string  `json:"name" validate:"required,max=200"`
	Type           string  `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subtype        string  `json:"subtype,omitempty" validate:"omitempty,max=100"`
	OpeningBalance float64 `json:"opening_balance"`
	ParentID       *int64  `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	Description    string  `json:"description,omitempty"`
	ActorID        int64   `json:"-"`
}

// Validate ensures the account input is usable.
func (r CreateAccountRequest) Validate() error {
	if r.CompanyID == 0 {
		return errors.New("ledger: company required")
	}
	if r.Code == "" {
		return errors.New("ledger: account code required")
	}
	if r.Name == "" {
		return errors.New("ledger: account name required")
	}
	if !AccountType(r.Type).Valid() {
		return fmt.Errorf("ledger: unknown account type %q", r.Type)
	}
	return nil
}

// LineInput describes a journal line in a create request.
type LineInput struct {
	AccountID   int64   `json:"account_id" validate:"required,gt=0"`
	Description string  `json:"description,omitempty"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
}

// CreateEntryRequest groups fields required to create a journal entry.
type CreateEntryRequest struct {
	CompanyID     int64       `json:"company_id" validate:"required,gt=0"`
	Date          time.Time   `json:"date" validate:"required"`
	Description   string      `json:"description" validate:"required"`
	Lines         []LineInput `json:"lines" validate:"required,min=2,dive"`
	ReferenceType string      `json:"reference_type,omitempty"`
	ReferenceID   string      `json:"reference_id,omitempty"`
	ActorID       int64       `json:"-"`
}

// Validate enforces the central balancing invariant before any persistence.
func (r CreateEntryRequest) Validate() error {
	if r.CompanyID == 0 {
		return errors.New("ledger: company required")
	}
	if len(r.Lines) < 2 {
		return ErrTooFewLines
	}
	var debit, credit float64
	for idx, line := range r.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx+1)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("ledger: line %d negative amount", idx+1)
		}
		if line.Debit > 0 && line.Credit > 0 {
			return fmt.Errorf("ledger: line %d cannot be both debit and credit", idx+1)
		}
		if line.Debit == 0 && line.Credit == 0 {
			return fmt.Errorf("ledger: line %d requires a debit or credit amount", idx+1)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if math.Abs(debit-credit) > balanceEpsilon {
		return ErrUnbalanced
	}
	return nil
}

// Totals returns the summed debit and credit amounts.
func (r CreateEntryRequest) Totals() (debit, credit float64) {
	for _, line := range r.Lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

// ReverseRequest wraps parameters for reversing a posted entry.
type ReverseRequest struct {
	EntryID int64     `json:"-"`
	Date    time.Time `json:"date"`
	Reason  string    `json:"reason" validate:"required"`
	ActorID int64     `json:"-"`
}

// ListEntriesFilter narrows entry listings.
type ListEntriesFilter struct {
	CompanyID int64
	Status    EntryStatus
	Limit     int
	Offset    int
}
