package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReportCachePort invalidates and serves cached report views.
type ReportCachePort interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Service coordinates ledger operations.
type Service struct {
	repo  Repository
	audit AuditPort
	cache ReportCachePort
	now   func() time.Time
}

// NewService builds Service. audit and cache may be nil.
func NewService(repo Repository, audit AuditPort, cache ReportCachePort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateAccount registers a chart of accounts node. A non-zero opening
// balance creates and posts a balancing entry against the Opening Balance
// Equity account so the ledger stays self-balancing from day one.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error) {
	if err := req.Validate(); err != nil {
		return Account{}, err
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetActiveAccountByCode(ctx, req.CompanyID, req.Code); err == nil {
			return ErrDuplicateAccountCode
		} else if !errors.Is(err, ErrAccountNotFound) {
			return err
		}
		// Opening balance is entered as the account's normal-side magnitude
		// but stored in debit convention, matching current_balance.
		opening := req.OpeningBalance
		if !AccountType(req.Type).DebitNormal() {
			opening = -opening
		}
		id, err := tx.InsertAccount(ctx, Account{
			CompanyID:      req.CompanyID,
			Code:           req.Code,
			Name:           req.Name,
			Type:           AccountType(req.Type),
			Subtype:        req.Subtype,
			ParentID:       req.ParentID,
			IsActive:       true,
			OpeningBalance: opening,
			Description:    req.Description,
		})
		if err != nil {
			return err
		}
		if req.OpeningBalance != 0 {
			if err := s.postOpeningBalance(ctx, tx, req, id); err != nil {
				return err
			}
		}
		account, err = tx.GetAccountForUpdate(ctx, id)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	s.recordAudit(ctx, req.CompanyID, req.ActorID, "ledger.account.create", "account", fmt.Sprintf("%d", account.ID), map[string]any{
		"code":            account.Code,
		"type":            account.Type,
		"opening_balance": account.OpeningBalance,
	})
	return account, nil
}

// postOpeningBalance books the opening amount against Opening Balance Equity.
// Debit-normal accounts are debited and equity credited; credit-normal
// accounts the other way round.
func (s *Service) postOpeningBalance(ctx context.Context, tx TxRepository, req CreateAccountRequest, accountID int64) error {
	equity, err := tx.GetActiveAccountByCode(ctx, req.CompanyID, OpeningEquityCode)
	if errors.Is(err, ErrAccountNotFound) {
		equityID, insertErr := tx.InsertAccount(ctx, Account{
			CompanyID: req.CompanyID,
			Code:      OpeningEquityCode,
			Name:      "Opening Balance Equity",
			Type:      AccountTypeEquity,
			IsActive:  true,
		})
		if insertErr != nil {
			return insertErr
		}
		equity = Account{ID: equityID}
	} else if err != nil {
		return err
	}

	amount := math.Abs(req.OpeningBalance)
	debitSide := AccountType(req.Type).DebitNormal() == (req.OpeningBalance > 0)
	lines := make([]LineInput, 2)
	if debitSide {
		lines[0] = LineInput{AccountID: accountID, Debit: amount, Description: "Opening balance"}
		lines[1] = LineInput{AccountID: equity.ID, Credit: amount, Description: "Opening balance offset"}
	} else {
		lines[0] = LineInput{AccountID: accountID, Credit: amount, Description: "Opening balance"}
		lines[1] = LineInput{AccountID: equity.ID, Debit: amount, Description: "Opening balance offset"}
	}
	entryID, err := s.insertEntryTx(ctx, tx, CreateEntryRequest{
		CompanyID:     req.CompanyID,
		Date:          s.now().UTC(),
		Description:   fmt.Sprintf("Opening balance for account %s", req.Code),
		Lines:         lines,
		ReferenceType: "opening_balance",
		ReferenceID:   fmt.Sprintf("%d", accountID),
		ActorID:       req.ActorID,
	})
	if err != nil {
		return err
	}
	return s.postEntryTx(ctx, tx, entryID)
}

// GetAccount fetches a single account.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// ListAccounts returns the chart of accounts for a company ordered by code.
func (s *Service) ListAccounts(ctx context.Context, companyID int64) ([]Account, error) {
	return s.repo.ListAccounts(ctx, companyID)
}

// CreateJournalEntry validates the balancing invariant, persists header and
// lines atomically with status draft, and returns the entry re-read with
// joined account details.
func (s *Service) CreateJournalEntry(ctx context.Context, req CreateEntryRequest) (JournalEntry, error) {
	if err := req.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := s.insertEntryTx(ctx, tx, req)
		if err != nil {
			return err
		}
		entry, err = tx.GetEntryWithLines(ctx, id)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.recordAudit(ctx, req.CompanyID, req.ActorID, "ledger.journal.create", "journal_entry", fmt.Sprintf("%d", entry.ID), map[string]any{
		"entry_number": entry.EntryNumber,
		"total_debit":  entry.TotalDebit,
	})
	return entry, nil
}

// PostJournalEntry applies a draft entry's line effects to account running
// balances and marks it posted. The whole operation runs in one transaction
// so readers never observe a partially applied posting.
func (s *Service) PostJournalEntry(ctx context.Context, entryID, actorID int64) (JournalEntry, error) {
	if entryID == 0 {
		return JournalEntry{}, errors.New("ledger: entry id required")
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := s.postEntryTx(ctx, tx, entryID); err != nil {
			return err
		}
		var err error
		entry, err = tx.GetEntryWithLines(ctx, entryID)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.bumpReports(ctx)
	s.recordAudit(ctx, entry.CompanyID, actorID, "ledger.journal.post", "journal_entry", fmt.Sprintf("%d", entry.ID), map[string]any{
		"entry_number": entry.EntryNumber,
	})
	return entry, nil
}

// ReverseJournalEntry creates a new entry with every line's debit and credit
// swapped, posts it, and flips the original to reversed. Net effect: every
// touched balance returns to its pre-entry value.
func (s *Service) ReverseJournalEntry(ctx context.Context, req ReverseRequest) (JournalEntry, error) {
	if req.EntryID == 0 {
		return JournalEntry{}, errors.New("ledger: entry id required")
	}
	var reversal JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryWithLines(ctx, req.EntryID)
		if err != nil {
			return err
		}
		if original.Status != EntryStatusPosted {
			return ErrInvalidTransition
		}
		date := req.Date
		if date.IsZero() {
			date = s.now().UTC()
		}
		id, err := s.insertEntryTx(ctx, tx, CreateEntryRequest{
			CompanyID:     original.CompanyID,
			Date:          date,
			Description:   fmt.Sprintf("Reversal: %s - %s", original.Description, req.Reason),
			Lines:         swapLines(original.Lines),
			ReferenceType: ReferenceTypeReversal,
			ReferenceID:   fmt.Sprintf("%d", original.ID),
			ActorID:       req.ActorID,
		})
		if err != nil {
			return err
		}
		if err := s.postEntryTx(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.UpdateEntryStatus(ctx, original.ID, EntryStatusReversed, nil); err != nil {
			return err
		}
		reversal, err = tx.GetEntryWithLines(ctx, id)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.bumpReports(ctx)
	s.recordAudit(ctx, reversal.CompanyID, req.ActorID, "ledger.journal.reverse", "journal_entry", fmt.Sprintf("%d", req.EntryID), map[string]any{
		"reversal_id":     reversal.ID,
		"reversal_number": reversal.EntryNumber,
		"reason":          req.Reason,
	})
	return reversal, nil
}

// GetEntry returns one entry with its lines.
func (s *Service) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListEntries returns entry headers for a company.
func (s *Service) ListEntries(ctx context.Context, filter ListEntriesFilter) ([]JournalEntry, error) {
	if filter.CompanyID == 0 {
		return nil, errors.New("ledger: company required")
	}
	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) insertEntryTx(ctx context.Context, tx TxRepository, req CreateEntryRequest) (int64, error) {
	seq, err := tx.NextEntryNumber(ctx, req.CompanyID)
	if err != nil {
		return 0, err
	}
	debit, credit := req.Totals()
	id, err := tx.InsertEntry(ctx, JournalEntry{
		CompanyID:     req.CompanyID,
		EntryNumber:   fmt.Sprintf("JE%06d", seq),
		Date:          req.Date,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		TotalDebit:    debit,
		TotalCredit:   credit,
		Status:        EntryStatusDraft,
		CreatedBy:     req.ActorID,
	})
	if err != nil {
		return 0, err
	}
	lines := make([]JournalLine, 0, len(req.Lines))
	for idx, in := range req.Lines {
		lines = append(lines, JournalLine{
			EntryID:     id,
			AccountID:   in.AccountID,
			Description: in.Description,
			Debit:       in.Debit,
			Credit:      in.Credit,
			LineNumber:  idx + 1,
		})
	}
	if err := tx.InsertLines(ctx, id, lines); err != nil {
		return 0, err
	}
	return id, nil
}

// postEntryTx walks every line and applies its signed effect to the account
// running balance. Balances are kept in debit convention (debit - credit)
// for every account type, so a balanced entry nets to zero across the books.
func (s *Service) postEntryTx(ctx context.Context, tx TxRepository, entryID int64) error {
	entry, err := tx.GetEntryWithLines(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != EntryStatusDraft {
		return ErrInvalidTransition
	}
	for _, line := range entry.Lines {
		if _, err := tx.GetAccountForUpdate(ctx, line.AccountID); err != nil {
			return err
		}
		if err := tx.ApplyBalanceDelta(ctx, line.AccountID, line.Debit-line.Credit); err != nil {
			return err
		}
	}
	now := s.now().UTC()
	return tx.UpdateEntryStatus(ctx, entryID, EntryStatusPosted, &now)
}

func swapLines(lines []JournalLine) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID:   line.AccountID,
			Description: line.Description,
			Debit:       line.Credit,
			Credit:      line.Debit,
		})
	}
	return out
}

func (s *Service) recordAudit(ctx context.Context, companyID, actorID int64, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Meta:      meta,
		At:        s.now(),
	})
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}
