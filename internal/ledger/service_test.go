package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	accounts map[int64]*Account
	byCode   map[string]int64
	entries  map[int64]*JournalEntry
	seq      map[int64]int64
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts: make(map[int64]*Account),
		byCode:   make(map[string]int64),
		entries:  make(map[int64]*JournalEntry),
		seq:      make(map[int64]int64),
	}
}

func codeKey(companyID int64, code string) string {
	return fmt.Sprintf("%d:%s", companyID, code)
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetAccount(ctx context.Context, id int64) (Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *acc, nil
}

func (r *memoryRepo) ListAccounts(ctx context.Context, companyID int64) ([]Account, error) {
	var out []Account
	for _, acc := range r.accounts {
		if acc.CompanyID == companyID {
			out = append(out, *acc)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	return (&memoryTx{repo: r}).GetEntryWithLines(ctx, id)
}

func (r *memoryRepo) ListEntries(ctx context.Context, filter ListEntriesFilter) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range r.entries {
		if e.CompanyID == filter.CompanyID && (filter.Status == "" || e.Status == filter.Status) {
			out = append(out, *e)
		}
	}
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) GetActiveAccountByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	id, ok := tx.repo.byCode[codeKey(companyID, code)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *tx.repo.accounts[id], nil
}

func (tx *memoryTx) InsertAccount(ctx context.Context, account Account) (int64, error) {
	if _, exists := tx.repo.byCode[codeKey(account.CompanyID, account.Code)]; exists {
		return 0, ErrDuplicateAccountCode
	}
	tx.repo.nextID++
	account.ID = tx.repo.nextID
	account.CurrentBalance = 0
	tx.repo.accounts[account.ID] = &account
	tx.repo.byCode[codeKey(account.CompanyID, account.Code)] = account.ID
	return account.ID, nil
}

func (tx *memoryTx) GetAccountForUpdate(ctx context.Context, id int64) (Account, error) {
	acc, ok := tx.repo.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *acc, nil
}

func (tx *memoryTx) ApplyBalanceDelta(ctx context.Context, accountID int64, delta float64) error {
	acc, ok := tx.repo.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	acc.CurrentBalance += delta
	return nil
}

func (tx *memoryTx) NextEntryNumber(ctx context.Context, companyID int64) (int64, error) {
	tx.repo.seq[companyID]++
	return tx.repo.seq[companyID], nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	tx.repo.nextID++
	entry.ID = tx.repo.nextID
	tx.repo.entries[entry.ID] = &entry
	return entry.ID, nil
}

func (tx *memoryTx) InsertLines(ctx context.Context, entryID int64, lines []JournalLine) error {
	entry, ok := tx.repo.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}
	entry.Lines = append(entry.Lines, lines...)
	return nil
}

func (tx *memoryTx) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, ok := tx.repo.entries[entryID]
	if !ok {
		return JournalEntry{}, ErrEntryNotFound
	}
	out := *entry
	out.Lines = make([]JournalLine, len(entry.Lines))
	copy(out.Lines, entry.Lines)
	for i := range out.Lines {
		if acc, ok := tx.repo.accounts[out.Lines[i].AccountID]; ok {
			out.Lines[i].AccountCode = acc.Code
			out.Lines[i].AccountName = acc.Name
			out.Lines[i].AccountType = acc.Type
		}
	}
	return out, nil
}

func (tx *memoryTx) UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus, postedAt *time.Time) error {
	entry, ok := tx.repo.entries[entryID]
	if !ok {
		return ErrEntryNotFound
	}
	entry.Status = status
	if postedAt != nil {
		entry.PostedAt = postedAt
	}
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, nil, nil)
}

func seedAccount(t *testing.T, svc *Service, code string, accType AccountType) Account {
	t.Helper()
	acc, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		CompanyID: 1,
		Code:      code,
		Name:      "Account " + code,
		Type:      string(accType),
	})
	require.NoError(t, err)
	return acc
}

func TestCreateEntryRejectsUnbalanced(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	sales := seedAccount(t, svc, "4000", AccountTypeRevenue)

	_, err := svc.CreateJournalEntry(context.Background(), CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "lopsided",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: 500},
			{AccountID: sales.ID, Credit: 400},
		},
	})
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Empty(t, repo.entries, "rejected entry must not be persisted")
}

func TestCreateEntryToleratesRoundingEpsilon(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	sales := seedAccount(t, svc, "4000", AccountTypeRevenue)

	entry, err := svc.CreateJournalEntry(context.Background(), CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "rounding",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: 100.005},
			{AccountID: sales.ID, Credit: 100.00},
		},
	})
	require.NoError(t, err)
	require.Equal(t, EntryStatusDraft, entry.Status)
}

func TestCreateEntryRejectsBothSidesOnOneLine(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	sales := seedAccount(t, svc, "4000", AccountTypeRevenue)

	_, err := svc.CreateJournalEntry(context.Background(), CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "both sides",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: 100, Credit: 100},
			{AccountID: sales.ID, Credit: 0, Debit: 0},
		},
	})
	require.Error(t, err)
	require.Empty(t, repo.entries)
}

func TestEntryNumbersAreSequentialPerCompany(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	sales := seedAccount(t, svc, "4000", AccountTypeRevenue)

	lines := []LineInput{
		{AccountID: cash.ID, Debit: 50},
		{AccountID: sales.ID, Credit: 50},
	}
	first, err := svc.CreateJournalEntry(context.Background(), CreateEntryRequest{CompanyID: 1, Date: time.Now(), Description: "one", Lines: lines})
	require.NoError(t, err)
	second, err := svc.CreateJournalEntry(context.Background(), CreateEntryRequest{CompanyID: 1, Date: time.Now(), Description: "two", Lines: lines})
	require.NoError(t, err)
	require.Equal(t, "JE000001", first.EntryNumber)
	require.Equal(t, "JE000002", second.EntryNumber)
}

func TestPostAppliesBalancesAndNetsToZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	loan := seedAccount(t, svc, "2000", AccountTypeLiability)

	entry, err := svc.CreateJournalEntry(ctx, CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "loan drawdown",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: 500},
			{AccountID: loan.ID, Credit: 500},
		},
	})
	require.NoError(t, err)
	require.Equal(t, EntryStatusDraft, entry.Status)

	posted, err := svc.PostJournalEntry(ctx, entry.ID, 7)
	require.NoError(t, err)
	require.Equal(t, EntryStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)

	cashAfter, _ := svc.GetAccount(ctx, cash.ID)
	loanAfter, _ := svc.GetAccount(ctx, loan.ID)
	require.InDelta(t, 500, cashAfter.CurrentBalance, 0.0001)
	require.InDelta(t, -500, loanAfter.CurrentBalance, 0.0001)
	require.InDelta(t, 0, cashAfter.CurrentBalance+loanAfter.CurrentBalance, 0.0001,
		"debits and credits must cancel across the books")
}

func TestPostRejectsNonDraft(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	sales := seedAccount(t, svc, "4000", AccountTypeRevenue)

	entry, err := svc.CreateJournalEntry(ctx, CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "sale",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: 250},
			{AccountID: sales.ID, Credit: 250},
		},
	})
	require.NoError(t, err)

	_, err = svc.PostJournalEntry(ctx, entry.ID, 1)
	require.NoError(t, err)

	_, err = svc.PostJournalEntry(ctx, entry.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	cashAfter, _ := svc.GetAccount(ctx, cash.ID)
	require.InDelta(t, 250, cashAfter.CurrentBalance, 0.0001, "double post must not re-apply balances")
}

func TestReverseRestoresBalances(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	expense := seedAccount(t, svc, "5000", AccountTypeExpense)

	entry, err := svc.CreateJournalEntry(ctx, CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "office rent",
		Lines: []LineInput{
			{AccountID: expense.ID, Debit: 300},
			{AccountID: cash.ID, Credit: 300},
		},
	})
	require.NoError(t, err)
	_, err = svc.PostJournalEntry(ctx, entry.ID, 1)
	require.NoError(t, err)

	reversal, err := svc.ReverseJournalEntry(ctx, ReverseRequest{EntryID: entry.ID, Reason: "booked twice"})
	require.NoError(t, err)
	require.Equal(t, EntryStatusPosted, reversal.Status)
	require.Equal(t, ReferenceTypeReversal, reversal.ReferenceType)
	require.Equal(t, fmt.Sprintf("%d", entry.ID), reversal.ReferenceID)
	require.Contains(t, reversal.Description, "Reversal:")
	require.Contains(t, reversal.Description, "booked twice")

	original, err := svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, EntryStatusReversed, original.Status)

	cashAfter, _ := svc.GetAccount(ctx, cash.ID)
	expenseAfter, _ := svc.GetAccount(ctx, expense.ID)
	require.InDelta(t, 0, cashAfter.CurrentBalance, 0.0001)
	require.InDelta(t, 0, expenseAfter.CurrentBalance, 0.0001)
}

func TestReverseRejectsDraft(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	cash := seedAccount(t, svc, "1000", AccountTypeAsset)
	sales := seedAccount(t, svc, "4000", AccountTypeRevenue)

	entry, err := svc.CreateJournalEntry(ctx, CreateEntryRequest{
		CompanyID:   1,
		Date:        time.Now(),
		Description: "sale",
		Lines: []LineInput{
			{AccountID: cash.ID, Debit: 10},
			{AccountID: sales.ID, Credit: 10},
		},
	})
	require.NoError(t, err)

	_, err = svc.ReverseJournalEntry(ctx, ReverseRequest{EntryID: entry.ID, Reason: "nope"})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedAccount(t, svc, "1000", AccountTypeAsset)

	_, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		CompanyID: 1,
		Code:      "1000",
		Name:      "Cash again",
		Type:      string(AccountTypeAsset),
	})
	require.ErrorIs(t, err, ErrDuplicateAccountCode)
}

func TestOpeningBalanceBooksAgainstEquity(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	acc, err := svc.CreateAccount(ctx, CreateAccountRequest{
		CompanyID:      1,
		Code:           "1000",
		Name:           "Cash",
		Type:           string(AccountTypeAsset),
		OpeningBalance: 1000,
	})
	require.NoError(t, err)
	require.InDelta(t, 1000, acc.CurrentBalance, 0.0001)

	equityID, ok := repo.byCode[codeKey(1, OpeningEquityCode)]
	require.True(t, ok, "opening balance equity must be auto-created")
	equity, err := svc.GetAccount(ctx, equityID)
	require.NoError(t, err)
	require.InDelta(t, -1000, equity.CurrentBalance, 0.0001)

	var posted int
	for _, e := range repo.entries {
		if e.Status == EntryStatusPosted {
			posted++
		}
	}
	require.Equal(t, 1, posted, "exactly one posted opening entry expected")
}

func TestOpeningBalanceReusesExistingEquity(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountRequest{
		CompanyID:      1,
		Code:           "1000",
		Name:           "Cash",
		Type:           string(AccountTypeAsset),
		OpeningBalance: 1000,
	})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, CreateAccountRequest{
		CompanyID:      1,
		Code:           "2100",
		Name:           "Bank Loan",
		Type:           string(AccountTypeLiability),
		OpeningBalance: 400,
	})
	require.NoError(t, err)

	equityID := repo.byCode[codeKey(1, OpeningEquityCode)]
	equity, err := svc.GetAccount(ctx, equityID)
	require.NoError(t, err)
	// +1000 credit from the asset opening, -400 debit from the liability one.
	require.InDelta(t, -600, equity.CurrentBalance, 0.0001)

	var total float64
	accounts, err := svc.ListAccounts(ctx, 1)
	require.NoError(t, err)
	for _, a := range accounts {
		total += a.CurrentBalance
	}
	require.InDelta(t, 0, total, 0.0001, "ledger must stay self-balancing")
}
