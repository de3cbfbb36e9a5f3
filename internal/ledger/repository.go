package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Repository encapsulates DB operations for the ledger.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetAccount(ctx context.Context, id int64) (Account, error)
	ListAccounts(ctx context.Context, companyID int64) ([]Account, error)
	GetEntry(ctx context.Context, id int64) (JournalEntry, error)
	ListEntries(ctx context.Context, filter ListEntriesFilter) ([]JournalEntry, error)
}

// TxRepository exposes operations available within a transaction.
type TxRepository interface {
	GetActiveAccountByCode(ctx context.Context, companyID int64, code string) (Account, error)
	InsertAccount(ctx context.Context, account Account) (int64, error)
	GetAccountForUpdate(ctx context.Context, id int64) (Account, error)
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta float64) error
	NextEntryNumber(ctx context.Context, companyID int64) (int64, error)
	InsertEntry(ctx context.Context, entry JournalEntry) (int64, error)
	InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error
	GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error)
	UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus, postedAt *time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const accountColumns = `id, company_id, code, name, type, subtype, parent_id, is_active, opening_balance, current_balance, description, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Subtype, &a.ParentID, &a.IsActive, &a.OpeningBalance, &a.CurrentBalance, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) ListAccounts(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE company_id=$1 ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Subtype, &a.ParentID, &a.IsActive, &a.OpeningBalance, &a.CurrentBalance, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

const entryColumns = `id, company_id, entry_number, date, reference_type, reference_id, description, total_debit, total_credit, status, posted_at, created_by, created_at, updated_at`

func (r *repository) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := getEntryWithLines(ctx, r.db, id)
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *repository) ListEntries(ctx context.Context, filter ListEntriesFilter) ([]JournalEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE company_id=$1`
	args := []any{filter.CompanyID}
	if filter.Status != "" {
		query += ` AND status=$2`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY entry_number DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EntryNumber, &e.Date, &e.ReferenceType, &e.ReferenceID, &e.Description, &e.TotalDebit, &e.TotalCredit, &e.Status, &e.PostedAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getEntryWithLines(ctx context.Context, q querier, entryID int64) (JournalEntry, error) {
	var e JournalEntry
	err := q.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID).
		Scan(&e.ID, &e.CompanyID, &e.EntryNumber, &e.Date, &e.ReferenceType, &e.ReferenceID, &e.Description, &e.TotalDebit, &e.TotalCredit, &e.Status, &e.PostedAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := q.Query(ctx, `SELECT l.id, l.entry_id, l.account_id, a.code, a.name, a.type, l.description, l.debit, l.credit, l.line_number
FROM journal_entry_line_items l
JOIN chart_of_accounts a ON a.id = l.account_id
WHERE l.entry_id=$1 ORDER BY l.line_number ASC`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.AccountCode, &line.AccountName, &line.AccountType, &line.Description, &line.Debit, &line.Credit, &line.LineNumber); err != nil {
			return JournalEntry{}, err
		}
		e.Lines = append(e.Lines, line)
	}
	return e, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetActiveAccountByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	account, err := scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE company_id=$1 AND code=$2 AND is_active`, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *txRepository) InsertAccount(ctx context.Context, account Account) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO chart_of_accounts (company_id, code, name, type, subtype, parent_id, is_active, opening_balance, current_balance, description)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		account.CompanyID, account.Code, account.Name, account.Type, account.Subtype, account.ParentID, account.IsActive, account.OpeningBalance, account.CurrentBalance, account.Description).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateAccountCode
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id int64) (Account, error) {
	account, err := scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *txRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta float64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE chart_of_accounts SET current_balance = current_balance + $2, updated_at = NOW() WHERE id=$1`, accountID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) NextEntryNumber(ctx context.Context, companyID int64) (int64, error) {
	return shared.NextDocumentNumber(ctx, r.tx, companyID, shared.DocTypeJournalEntry)
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (company_id, entry_number, date, reference_type, reference_id, description, total_debit, total_credit, status, posted_at, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		entry.CompanyID, entry.EntryNumber, entry.Date, entry.ReferenceType, entry.ReferenceID, entry.Description, entry.TotalDebit, entry.TotalCredit, entry.Status, entry.PostedAt, entry.CreatedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_line_items (entry_id, account_id, description, debit, credit, line_number)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, line.AccountID, line.Description, line.Debit, line.Credit, line.LineNumber); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	return getEntryWithLines(ctx, r.tx, entryID)
}

func (r *txRepository) UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus, postedAt *time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status=$2, posted_at=COALESCE($3, posted_at), updated_at=NOW() WHERE id=$1`, entryID, status, postedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
