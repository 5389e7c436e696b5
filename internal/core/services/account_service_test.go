package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
	a domain.Account
	b domain.Account
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(suite.T())
	suite.a = suite.f.createAccount(suite.T(), "alice", "100")
	suite.b = suite.f.createAccount(suite.T(), "bob", "")
}

func (suite *AccountServiceTestSuite) transfer(value string) domain.TransactionRecord {
	t := suite.T()
	record, err := suite.f.ledger.PerformOne(suite.f.ctx, tx(t, value, "transfer"), suite.a.UID, suite.b.UID, suite.f.authFor(t, suite.a.UID), false)
	suite.Require().NoError(err)
	return record
}

func (suite *AccountServiceTestSuite) snapshotDays(accountUID string) []time.Time {
	days, err := suite.f.repos.AccountRepo.ListSnapshotDays(suite.f.ctx, accountUID)
	suite.Require().NoError(err)
	return days
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	acc, err := suite.f.accounts.CreateAccount(suite.f.ctx, dto.CreateAccountRequest{
		Name:              "  carol ",
		Description:       "savings",
		OverdraftLimit:    "25.5",
		MaximumDailyLimit: "10",
	}, "creator")
	suite.Require().NoError(err)
	suite.NotEmpty(acc.UID)
	suite.Equal("carol", acc.Name)
	suite.True(dec("25.5").Equal(acc.OverdraftLimit))
	suite.True(dec("10").Equal(acc.MaximumDailyLimit))
	suite.Equal("creator", acc.CreatedBy)
	suite.True(suite.f.clock.Now().Equal(acc.CreatedAt))

	stored, err := suite.f.accounts.GetAccount(suite.f.ctx, acc.UID)
	suite.Require().NoError(err)
	suite.Equal(acc.UID, stored.UID)
	suite.True(acc.OverdraftLimit.Equal(stored.OverdraftLimit))

	suite.Len(suite.snapshotDays(acc.UID), 1)
	status := suite.f.status(suite.T(), acc.UID)
	suite.True(status.Balance.IsZero())
	suite.True(dec("10").Equal(status.Available))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Invalid() {
	cases := []struct {
		name string
		req  dto.CreateAccountRequest
		want error
	}{
		{"missing name", dto.CreateAccountRequest{Name: " "}, apperrors.ErrValidation},
		{"bad overdraft", dto.CreateAccountRequest{Name: "x", OverdraftLimit: "lots"}, apperrors.ErrValidation},
		{"negative overdraft", dto.CreateAccountRequest{Name: "x", OverdraftLimit: "-5"}, apperrors.ErrAccount},
		{"negative daily limit", dto.CreateAccountRequest{Name: "x", MaximumDailyLimit: "-1"}, apperrors.ErrAccount},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.f.accounts.CreateAccount(suite.f.ctx, tc.req, "creator")
			suite.ErrorIs(err, tc.want)
		})
	}
}

func (suite *AccountServiceTestSuite) TestGetAccount_NotFound() {
	_, err := suite.f.accounts.GetAccount(suite.f.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.f.accounts.BalanceStatus(suite.f.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestDebit_Validation() {
	t := suite.T()
	_, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, domain.Transaction{Value: domain.Zero}, suite.f.authFor(t, suite.a.UID), false)
	suite.ErrorIs(err, apperrors.ErrTransaction)

	_, err = suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, domain.Transaction{Value: dec("5")}, suite.f.authFor(t, suite.a.UID), false)
	suite.ErrorIs(err, apperrors.ErrTransaction, "a positive value needs a description")

	_, err = suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(t, "5", "x"), suite.f.authFor(t, suite.b.UID), false)
	suite.ErrorIs(err, apperrors.ErrPermission)
}

func (suite *AccountServiceTestSuite) TestCredit_RejectsOwnDebit() {
	t := suite.T()
	note, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(t, "5", "x"), suite.f.authFor(t, suite.a.UID), false)
	suite.Require().NoError(err)

	_, err = suite.f.accounts.Credit(suite.f.ctx, suite.a.UID, note)
	suite.ErrorIs(err, apperrors.ErrAccount)

	credit, err := suite.f.accounts.Credit(suite.f.ctx, suite.b.UID, note)
	suite.Require().NoError(err)
	suite.Equal(note.UID, credit.DebitNoteUID)
	suite.Equal(suite.a.UID, credit.DebitAccountUID)
	suite.True(note.Value().Equal(credit.Value))
}

func (suite *AccountServiceTestSuite) TestDebit_PostCheckRemovesItemAfterConcurrentWrite() {
	injected := false
	suite.f.store.AfterSet(func(ctx context.Context, key string) {
		if injected || !strings.HasPrefix(key, "accounts/"+suite.a.UID+"/") || !strings.Contains(key, "/DR:") {
			return
		}
		injected = true
		entry := domain.LineItemEntry{
			UID:  domain.NewNoteUID(suite.f.clock.Now(), "deadbeef"),
			Item: domain.LineItem{Code: domain.CodeDebit, Value: dec("50")},
		}
		_ = suite.f.store.Store.Set(ctx, "accounts/"+suite.a.UID+"/"+entry.UID+"/"+entry.Item.EncodeKey(), []byte("{}"))
	})

	_, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(suite.T(), "60", "race"), suite.f.authFor(suite.T(), suite.a.UID), false)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(injected)

	status := suite.f.status(suite.T(), suite.a.UID)
	suite.True(dec("-50").Equal(status.Balance), "only the concurrent debit remains")
}

func (suite *AccountServiceTestSuite) TestDayRolloverGuard() {
	suite.f.clock.Set(time.Date(2026, 3, 1, 23, 59, 45, 0, time.UTC))

	record := suite.transfer("10")
	suite.True(strings.HasPrefix(record.DebitNote.UID, "2026-03-02/"), record.DebitNote.UID)
	suite.True(strings.HasPrefix(record.CreditNote.UID, "2026-03-02/"), record.CreditNote.UID)
	suite.False(suite.f.clock.Now().Before(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))

	suite.True(dec("-10").Equal(suite.f.status(suite.T(), suite.a.UID).Balance))
	suite.True(dec("10").Equal(suite.f.status(suite.T(), suite.b.UID).Balance))
}

func (suite *AccountServiceTestSuite) TestDayRolloverGuard_WaitsOutsideAccountLock() {
	t := suite.T()
	suite.f.clock.Set(time.Date(2026, 3, 1, 23, 59, 45, 0, time.UTC))
	auth := suite.f.authFor(t, suite.a.UID)
	lockKey := "lock/account/" + suite.a.UID

	waited := false
	suite.f.clock.OnSleep(func() {
		waited = true
		suite.Empty(suite.f.keys(t, lockKey), "account lock must be free while waiting for midnight")
		other, err := suite.f.locker.Acquire(suite.f.ctx, "account/"+suite.a.UID, portsrepo.LockOptions{Timeout: time.Second, Lease: time.Minute})
		suite.Require().NoError(err)
		suite.Require().NoError(other.Unlock(suite.f.ctx))
	})

	note, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(t, "10", "late"), auth, false)
	suite.Require().NoError(err)
	suite.True(waited)
	suite.True(strings.HasPrefix(note.UID, "2026-03-02/"), note.UID)
	suite.Empty(suite.f.keys(t, lockKey))
}

func (suite *AccountServiceTestSuite) TestDebit_LockWaitIntoRolloverWindowRetriesAfterMidnight() {
	t := suite.T()
	suite.f.clock.Set(time.Date(2026, 3, 1, 23, 59, 25, 0, time.UTC))
	auth := suite.f.authFor(t, suite.a.UID)

	// Held with a short lease, so the debit gets the lock only inside the window.
	_, err := suite.f.locker.Acquire(suite.f.ctx, "account/"+suite.a.UID, portsrepo.LockOptions{Timeout: time.Second, Lease: 8 * time.Second})
	suite.Require().NoError(err)

	note, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(t, "10", "late"), auth, false)
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(note.UID, "2026-03-02/"), note.UID)
	suite.Empty(suite.f.keys(t, "accounts/"+suite.a.UID+"/2026-03-01/"))
}

func (suite *AccountServiceTestSuite) TestReconcile_AcrossDays() {
	suite.transfer("30")
	suite.f.clock.Advance(3 * 24 * time.Hour)

	suite.True(dec("-30").Equal(suite.f.status(suite.T(), suite.a.UID).Balance))
	suite.Len(suite.snapshotDays(suite.a.UID), 4)

	snapshot, err := suite.f.accounts.ReconcileDailySnapshot(suite.f.ctx, suite.a.UID, suite.f.clock.Now())
	suite.Require().NoError(err)
	suite.True(dec("-30").Equal(snapshot.Balance))

	suite.transfer("5")
	suite.f.clock.Advance(24 * time.Hour)
	suite.True(dec("-35").Equal(suite.f.status(suite.T(), suite.a.UID).Balance))
	suite.True(dec("35").Equal(suite.f.status(suite.T(), suite.b.UID).Balance))
}

func (suite *AccountServiceTestSuite) TestReconcile_BeyondLookback() {
	suite.transfer("30")
	suite.f.clock.Advance(150 * 24 * time.Hour)

	suite.True(dec("-30").Equal(suite.f.status(suite.T(), suite.a.UID).Balance))
	suite.Len(suite.snapshotDays(suite.a.UID), 151)
}

func (suite *AccountServiceTestSuite) TestReconcile_WithoutAnySnapshot() {
	suite.transfer("30")
	suite.Require().NoError(suite.f.store.Delete(suite.f.ctx, "accounts/"+suite.a.UID+"/balance/2026-03-01"))
	suite.f.clock.Advance(2 * 24 * time.Hour)

	suite.True(dec("-30").Equal(suite.f.status(suite.T(), suite.a.UID).Balance))
	suite.Len(suite.snapshotDays(suite.a.UID), 2)
}

func (suite *AccountServiceTestSuite) TestSetOverdraftLimit() {
	suite.transfer("60")

	_, err := suite.f.accounts.SetOverdraftLimit(suite.f.ctx, suite.a.UID, dec("50"), "admin")
	suite.ErrorIs(err, apperrors.ErrAccount)
	acc, err := suite.f.accounts.GetAccount(suite.f.ctx, suite.a.UID)
	suite.Require().NoError(err)
	suite.True(dec("100").Equal(acc.OverdraftLimit))

	_, err = suite.f.accounts.SetOverdraftLimit(suite.f.ctx, suite.a.UID, dec("-1"), "admin")
	suite.ErrorIs(err, apperrors.ErrAccount)

	acc, err = suite.f.accounts.SetOverdraftLimit(suite.f.ctx, suite.a.UID, dec("60"), "admin")
	suite.Require().NoError(err)
	suite.True(dec("60").Equal(acc.OverdraftLimit))
	suite.Equal("admin", acc.LastUpdatedBy)
	suite.True(suite.f.status(suite.T(), suite.a.UID).Available.IsZero())
}

func (suite *AccountServiceTestSuite) TestSetMaximumDailyLimit() {
	acc, err := suite.f.accounts.SetMaximumDailyLimit(suite.f.ctx, suite.a.UID, dec("20"), "admin")
	suite.Require().NoError(err)
	suite.True(acc.HasDailyLimit())
	suite.True(dec("20").Equal(suite.f.status(suite.T(), suite.a.UID).Available))

	_, err = suite.f.accounts.SetMaximumDailyLimit(suite.f.ctx, suite.a.UID, dec("-20"), "admin")
	suite.ErrorIs(err, apperrors.ErrAccount)

	acc, err = suite.f.accounts.SetMaximumDailyLimit(suite.f.ctx, suite.a.UID, domain.Zero, "admin")
	suite.Require().NoError(err)
	suite.False(acc.HasDailyLimit())
}

func (suite *AccountServiceTestSuite) TestListLineItems_Pagination() {
	for i := 0; i < 3; i++ {
		suite.transfer("1")
		suite.f.clock.Advance(time.Millisecond)
	}
	day := suite.f.clock.Now()

	page, err := suite.f.accounts.ListLineItems(suite.f.ctx, suite.a.UID, day, dto.ListLineItemsParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Len(page.Items, 2)
	suite.Require().NotNil(page.NextToken)
	suite.Equal(domain.CodeDebit, page.Items[0].Code)
	suite.Less(page.Items[0].UID, page.Items[1].UID)

	next, err := suite.f.accounts.ListLineItems(suite.f.ctx, suite.a.UID, day, dto.ListLineItemsParams{Limit: 2, NextToken: page.NextToken})
	suite.Require().NoError(err)
	suite.Len(next.Items, 1)
	suite.Nil(next.NextToken)
	suite.Less(page.Items[1].UID, next.Items[0].UID)

	_, err = suite.f.accounts.ListLineItems(suite.f.ctx, suite.b.UID, day, dto.ListLineItemsParams{NextToken: page.NextToken})
	suite.ErrorIs(err, apperrors.ErrValidation, "a token is bound to its account")

	bad := "not-a-token"
	_, err = suite.f.accounts.ListLineItems(suite.f.ctx, suite.a.UID, day, dto.ListLineItemsParams{NextToken: &bad})
	suite.ErrorIs(err, apperrors.ErrValidation)

	empty, err := suite.f.accounts.ListLineItems(suite.f.ctx, suite.a.UID, day.AddDate(0, 0, -1), dto.ListLineItemsParams{})
	suite.Require().NoError(err)
	suite.Empty(empty.Items)
}

func (suite *AccountServiceTestSuite) TestPost_IgnoresOverdraft() {
	entry, err := suite.f.accounts.Post(suite.f.ctx, suite.b.UID, domain.LineItem{Code: domain.CodeSentRefund, Value: dec("500")}, "note", domain.Authorisation{}, "refund")
	suite.Require().NoError(err)
	suite.True(dec("-500").Equal(suite.f.status(suite.T(), suite.b.UID).Balance))

	suite.Require().NoError(suite.f.accounts.RemoveLineItem(suite.f.ctx, suite.b.UID, entry))
	suite.True(suite.f.status(suite.T(), suite.b.UID).Balance.IsZero())
}

func (suite *AccountServiceTestSuite) TestPost_WaitsForAccountLock() {
	holder, err := suite.f.locker.Acquire(suite.f.ctx, "account/"+suite.b.UID, portsrepo.LockOptions{Timeout: time.Second, Lease: time.Hour})
	suite.Require().NoError(err)

	item := domain.LineItem{Code: domain.CodeSentRefund, Value: dec("5")}
	_, err = suite.f.accounts.Post(suite.f.ctx, suite.b.UID, item, "note", domain.Authorisation{}, "refund")
	suite.ErrorIs(err, apperrors.ErrMutexTimeout)
	suite.True(suite.f.status(suite.T(), suite.b.UID).Balance.IsZero())

	suite.Require().NoError(holder.Unlock(suite.f.ctx))
	_, err = suite.f.accounts.Post(suite.f.ctx, suite.b.UID, item, "note", domain.Authorisation{}, "refund")
	suite.Require().NoError(err)
	suite.True(dec("-5").Equal(suite.f.status(suite.T(), suite.b.UID).Balance))
}

func (suite *AccountServiceTestSuite) TestWithdraw_SameDayDeletesDebit() {
	t := suite.T()
	_, err := suite.f.accounts.SetMaximumDailyLimit(suite.f.ctx, suite.a.UID, dec("100"), "tester")
	suite.Require().NoError(err)
	note, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(t, "60", "held"), suite.f.authFor(t, suite.a.UID), false)
	suite.Require().NoError(err)

	entry := domain.LineItemEntry{UID: note.UID, Item: domain.LineItem{Code: domain.CodeDebit, Value: note.Value()}}
	reversal := domain.LineItem{Code: domain.CodeReceivedRefund, Value: note.Value()}
	suite.Require().NoError(suite.f.accounts.Withdraw(suite.f.ctx, suite.a.UID, entry, reversal, note.UID, note.Authorisation))

	status := suite.f.status(t, suite.a.UID)
	suite.True(status.Balance.IsZero())
	suite.True(status.SpentToday.IsZero())
	suite.True(dec("100").Equal(status.Available))
	suite.Empty(suite.f.keys(t, "accounts/"+suite.a.UID+"/2026-03-01/"))
}

func (suite *AccountServiceTestSuite) TestWithdraw_EarlierDayWritesReversal() {
	t := suite.T()
	note, err := suite.f.accounts.Debit(suite.f.ctx, suite.a.UID, tx(t, "60", "held"), suite.f.authFor(t, suite.a.UID), false)
	suite.Require().NoError(err)
	suite.f.clock.Advance(24 * time.Hour)

	entry := domain.LineItemEntry{UID: note.UID, Item: domain.LineItem{Code: domain.CodeDebit, Value: note.Value()}}
	reversal := domain.LineItem{Code: domain.CodeReceivedRefund, Value: note.Value()}
	suite.Require().NoError(suite.f.accounts.Withdraw(suite.f.ctx, suite.a.UID, entry, reversal, note.UID, note.Authorisation))

	status := suite.f.status(t, suite.a.UID)
	suite.True(status.Balance.IsZero())
	suite.True(status.SpentToday.IsZero())
	suite.Len(suite.f.keys(t, "accounts/"+suite.a.UID+"/2026-03-01/"), 1)
	today := suite.f.keys(t, "accounts/"+suite.a.UID+"/2026-03-02/")
	suite.Require().Len(today, 1)
	suite.Contains(today[0], "/RF:60.000000")
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
