package ledger

import (
	"errors"
	"fmt"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Sentinels wrap the shared error categories so transport code maps them
// to statuses without ledger-specific branches.
var (
	// ErrUnbalanced indicates debit != credit beyond the rounding epsilon.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("ledger: journal requires at least two lines")
	// ErrDuplicateAccountCode indicates an account code collision within a company.
	ErrDuplicateAccountCode = fmt.Errorf("ledger: account code already in use: %w", shared.ErrDuplicate)
	// ErrInvalidTransition indicates posting a non-draft or reversing a non-posted entry.
	ErrInvalidTransition = fmt.Errorf("ledger: invalid status transition: %w", shared.ErrConflict)
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = fmt.Errorf("ledger: account %w", shared.ErrNotFound)
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = fmt.Errorf("ledger: journal entry %w", shared.ErrNotFound)
)

// balanceEpsilon is the tolerance for debit/credit equality checks.
const balanceEpsilon = 0.01
