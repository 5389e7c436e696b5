package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
	"github.com/SscSPs/acquire_ledger/internal/utils"
	"github.com/SscSPs/acquire_ledger/internal/utils/pagination"
	"github.com/google/uuid"
)

const (
	// dayRolloverGuard is how close to midnight a write waits for the next day.
	dayRolloverGuard = 30 * time.Second

	// reconcileLookback is how many days ReconcileDailySnapshot probes one by
	// one before falling back to listing every snapshot of the account.
	reconcileLookback = 100

	defaultStatementLimit = 50
	maxStatementLimit     = 500
)

// Line item reasons recorded in the stored document.
const (
	reasonDebit        = "debit"
	reasonCredit       = "credit"
	reasonReceipt      = "receipt"
	reasonRefund       = "refund"
	reasonCompensation = "compensation"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	locker       portsrepo.Locker
	lockOpts     portsrepo.LockOptions
	randomSuffix func() (string, error)
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountVerifier sets the authorisation verifier used by Debit.
func WithAccountVerifier(v portssvc.AuthorisationVerifier) AccountServiceOption {
	return func(s *accountService) {
		s.Verifier = v
	}
}

// WithAccountLockOptions overrides the per-account lock timeout and lease.
func WithAccountLockOptions(opts portsrepo.LockOptions) AccountServiceOption {
	return func(s *accountService) {
		s.lockOpts = opts
	}
}

// WithAccountClock replaces the clock and the sleep used by the day-rollover guard.
func WithAccountClock(now func() time.Time, sleep func(context.Context, time.Duration) error) AccountServiceOption {
	return func(s *accountService) {
		s.Now = now
		s.Sleep = sleep
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, locker portsrepo.Locker, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		BaseService:  newBaseService(),
		accountRepo:  repo,
		locker:       locker,
		lockOpts:     mutex.DefaultOptions,
		randomSuffix: utils.RandomNoteSuffix,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func accountLockKey(accountUID string) string { return "account/" + accountUID }

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, principal string) (domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Account{}, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	overdraft, err := parseLimit("overdraft limit", req.OverdraftLimit)
	if err != nil {
		return domain.Account{}, err
	}
	daily, err := parseLimit("maximum daily limit", req.MaximumDailyLimit)
	if err != nil {
		return domain.Account{}, err
	}

	now := s.now()
	account := domain.Account{
		UID:               uuid.NewString(),
		Name:              name,
		Description:       strings.TrimSpace(req.Description),
		OverdraftLimit:    overdraft,
		MaximumDailyLimit: daily,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     principal,
			LastUpdatedAt: now,
			LastUpdatedBy: principal,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_uid", account.UID))
		return domain.Account{}, err
	}
	if err := s.accountRepo.SaveSnapshot(ctx, account.UID, startOfDay(now), domain.BalanceSnapshot{}); err != nil {
		s.LogError(ctx, err, "Failed to save opening snapshot", slog.String("account_uid", account.UID))
		return domain.Account{}, err
	}

	s.LogInfo(ctx, "Account created", slog.String("account_uid", account.UID), slog.String("name", account.Name))
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountUID string) (domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUID(ctx, accountUID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load account", slog.String("account_uid", accountUID))
		}
		return domain.Account{}, err
	}
	return account, nil
}

// currentState folds today's line items onto today's snapshot.
func (s *accountService) currentState(ctx context.Context, accountUID string, now time.Time) (domain.BalanceState, error) {
	day := startOfDay(now)
	snapshot, err := s.ReconcileDailySnapshot(ctx, accountUID, day)
	if err != nil {
		return domain.BalanceState{}, err
	}
	return s.foldDay(ctx, accountUID, day, snapshot)
}

func (s *accountService) foldDay(ctx context.Context, accountUID string, day time.Time, snapshot domain.BalanceSnapshot) (domain.BalanceState, error) {
	entries, err := s.accountRepo.ListLineItems(ctx, accountUID, day)
	if err != nil {
		return domain.BalanceState{}, err
	}
	state := domain.BalanceState{BalanceSnapshot: snapshot}
	for _, e := range entries {
		if err := state.Apply(e.Item); err != nil {
			return domain.BalanceState{}, fmt.Errorf("account %s line item %s: %w", accountUID, e.UID, err)
		}
	}
	return state, nil
}

func (s *accountService) BalanceStatus(ctx context.Context, accountUID string) (domain.BalanceStatus, error) {
	account, err := s.GetAccount(ctx, accountUID)
	if err != nil {
		return domain.BalanceStatus{}, err
	}
	now := s.now()
	state, err := s.currentState(ctx, accountUID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance", slog.String("account_uid", accountUID))
		return domain.BalanceStatus{}, err
	}
	available, err := domain.AvailableBalance(state, account)
	if err != nil {
		return domain.BalanceStatus{}, err
	}
	return domain.BalanceStatus{
		AccountUID:        accountUID,
		Balance:           state.Balance,
		Liability:         state.Liability,
		Receivable:        state.Receivable,
		SpentToday:        state.SpentToday,
		OverdraftLimit:    account.OverdraftLimit,
		MaximumDailyLimit: account.MaximumDailyLimit,
		Available:         available,
		AsOf:              now,
	}, nil
}

func (s *accountService) Balance(ctx context.Context, accountUID string) (domain.BoundedDecimal, error) {
	status, err := s.BalanceStatus(ctx, accountUID)
	return status.Balance, err
}

func (s *accountService) Liability(ctx context.Context, accountUID string) (domain.BoundedDecimal, error) {
	status, err := s.BalanceStatus(ctx, accountUID)
	return status.Liability, err
}

func (s *accountService) Receivable(ctx context.Context, accountUID string) (domain.BoundedDecimal, error) {
	status, err := s.BalanceStatus(ctx, accountUID)
	return status.Receivable, err
}

// ReconcileDailySnapshot returns the snapshot for day, computing and writing
// it (and every missing snapshot before it) from the latest earlier one.
// Concurrent callers compute the same values, so racing writes are harmless.
func (s *accountService) ReconcileDailySnapshot(ctx context.Context, accountUID string, day time.Time) (domain.BalanceSnapshot, error) {
	day = startOfDay(day)
	snapshot, err := s.accountRepo.FindSnapshot(ctx, accountUID, day)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.BalanceSnapshot{}, err
	}

	baseDay, base, err := s.latestSnapshotBefore(ctx, accountUID, day)
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}

	current := base
	for d := baseDay; d.Before(day); d = d.AddDate(0, 0, 1) {
		state, err := s.foldDay(ctx, accountUID, d, current)
		if err != nil {
			return domain.BalanceSnapshot{}, err
		}
		current = state.BalanceSnapshot
		if err := s.accountRepo.SaveSnapshot(ctx, accountUID, d.AddDate(0, 0, 1), current); err != nil {
			return domain.BalanceSnapshot{}, err
		}
	}

	s.LogDebug(ctx, "Reconciled daily snapshot",
		slog.String("account_uid", accountUID),
		slog.String("from", baseDay.Format(domain.DayFormat)),
		slog.String("to", day.Format(domain.DayFormat)))
	return current, nil
}

// latestSnapshotBefore finds where to start walking forward from. Without
// any snapshot the walk starts at the account's creation day with zeros.
func (s *accountService) latestSnapshotBefore(ctx context.Context, accountUID string, day time.Time) (time.Time, domain.BalanceSnapshot, error) {
	for i := 1; i <= reconcileLookback; i++ {
		d := day.AddDate(0, 0, -i)
		snapshot, err := s.accountRepo.FindSnapshot(ctx, accountUID, d)
		if err == nil {
			return d, snapshot, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return time.Time{}, domain.BalanceSnapshot{}, err
		}
	}

	days, err := s.accountRepo.ListSnapshotDays(ctx, accountUID)
	if err != nil {
		return time.Time{}, domain.BalanceSnapshot{}, err
	}
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].Before(day) {
			snapshot, err := s.accountRepo.FindSnapshot(ctx, accountUID, days[i])
			if err != nil {
				return time.Time{}, domain.BalanceSnapshot{}, err
			}
			return days[i], snapshot, nil
		}
	}

	account, err := s.accountRepo.FindAccountByUID(ctx, accountUID)
	if err != nil {
		return time.Time{}, domain.BalanceSnapshot{}, err
	}
	created := startOfDay(account.CreatedAt)
	if created.After(day) {
		created = day
	}
	s.LogInfo(ctx, "No snapshot found, rebuilding from account creation", slog.String("account_uid", accountUID))
	return created, domain.BalanceSnapshot{}, nil
}

// errDayRollover tells withAccountLock to wait for midnight and retry.
var errDayRollover = errors.New("inside the day-rollover window")

func inRolloverWindow(now time.Time) bool {
	return startOfDay(now).AddDate(0, 0, 1).Sub(now) <= dayRolloverGuard
}

// safeNow applies the day-rollover guard: inside the last seconds of a day
// it waits for midnight so a write never lands behind the next snapshot.
// It must not be called while holding an account lock.
func (s *accountService) safeNow(ctx context.Context) (time.Time, error) {
	now := s.now()
	if !inRolloverWindow(now) {
		return now, nil
	}
	midnight := startOfDay(now).AddDate(0, 0, 1)
	wait := midnight.Sub(now)
	s.LogDebug(ctx, "Waiting for day rollover", slog.Duration("wait", wait))
	if err := s.Sleep(ctx, wait); err != nil {
		return time.Time{}, err
	}
	now = s.now()
	if now.Before(midnight) {
		now = midnight
	}
	return now, nil
}

// withAccountLock runs fn under the account mutex with a timestamp outside
// the day-rollover window. The guard waits before the lock is taken, so the
// lease only covers the work itself.
func (s *accountService) withAccountLock(ctx context.Context, accountUID string, fn func(ctx context.Context, now time.Time) error) error {
	for {
		if _, err := s.safeNow(ctx); err != nil {
			return err
		}
		err := mutex.WithLock(ctx, s.locker, accountLockKey(accountUID), s.lockOpts, func(ctx context.Context) error {
			now := s.now()
			if inRolloverWindow(now) {
				return errDayRollover
			}
			return fn(ctx, now)
		})
		if !errors.Is(err, errDayRollover) {
			return err
		}
	}
}

func (s *accountService) newEntry(now time.Time, item domain.LineItem) (domain.LineItemEntry, error) {
	suffix, err := s.randomSuffix()
	if err != nil {
		return domain.LineItemEntry{}, err
	}
	return domain.LineItemEntry{UID: domain.NewNoteUID(now, suffix), Item: item}, nil
}

func (s *accountService) Debit(ctx context.Context, accountUID string, tx domain.Transaction, auth domain.Authorisation, isProvisional bool) (domain.DebitNote, error) {
	if err := tx.Validate(); err != nil {
		return domain.DebitNote{}, err
	}
	if !tx.Value.IsPositive() {
		return domain.DebitNote{}, fmt.Errorf("%w: cannot debit a zero value", apperrors.ErrTransaction)
	}
	if err := s.Authorise(ctx, auth, domain.AccountResource(accountUID)); err != nil {
		return domain.DebitNote{}, err
	}

	var note domain.DebitNote
	err := s.withAccountLock(ctx, accountUID, func(ctx context.Context, now time.Time) error {
		account, err := s.GetAccount(ctx, accountUID)
		if err != nil {
			return err
		}

		state, err := s.currentState(ctx, accountUID, now)
		if err != nil {
			return err
		}
		available, err := domain.AvailableBalance(state, account)
		if err != nil {
			return err
		}
		if available.LessThan(tx.Value) {
			return fmt.Errorf("%w: account %s has %s available, cannot debit %s",
				apperrors.ErrInsufficientFunds, accountUID, available, tx.Value)
		}

		code := domain.CodeDebit
		if isProvisional {
			code = domain.CodeCurrentLiability
		}
		entry, err := s.newEntry(now, domain.LineItem{Code: code, Value: tx.Value})
		if err != nil {
			return err
		}
		doc := portsrepo.LineItemDocument{NoteUID: entry.UID, Authorisation: auth, Reason: reasonDebit, CreatedAt: now}
		if err := s.accountRepo.WriteLineItem(ctx, accountUID, entry, doc); err != nil {
			return err
		}

		if err := s.postCheck(ctx, account, now); err != nil {
			if derr := s.accountRepo.DeleteLineItem(ctx, accountUID, entry); derr != nil {
				s.LogError(ctx, derr, "Failed to remove debit after post-check", slog.String("account_uid", accountUID), slog.String("note_uid", entry.UID))
				return &apperrors.UnbalancedLedgerError{Cause: err, Compensations: []error{derr}}
			}
			return err
		}

		note = domain.DebitNote{
			UID:           entry.UID,
			Timestamp:     now,
			AccountUID:    accountUID,
			Transaction:   tx,
			Authorisation: auth,
			IsProvisional: isProvisional,
		}
		return nil
	})
	if err != nil {
		// An unbalanced ledger was logged where the delete failed; the caller escalates it.
		if !errors.Is(err, apperrors.ErrInsufficientFunds) && !errors.Is(err, apperrors.ErrUnbalancedLedger) {
			s.LogError(ctx, err, "Debit failed", slog.String("account_uid", accountUID))
		}
		return domain.DebitNote{}, err
	}

	s.LogDebug(ctx, "Account debited", slog.String("account_uid", accountUID), slog.String("note_uid", note.UID), slog.String("value", tx.Value.String()))
	return note, nil
}

// postCheck re-reads the account after a debit was written and fails if a
// concurrent write pushed it past its overdraft or daily limit.
func (s *accountService) postCheck(ctx context.Context, account domain.Account, now time.Time) error {
	state, err := s.currentState(ctx, account.UID, now)
	if err != nil {
		return err
	}
	beyond, err := state.IsBeyondOverdraft(account.OverdraftLimit)
	if err != nil {
		return err
	}
	if beyond {
		return fmt.Errorf("%w: account %s would exceed its overdraft limit", apperrors.ErrInsufficientFunds, account.UID)
	}
	if account.HasDailyLimit() && state.SpentToday.GreaterThan(account.MaximumDailyLimit) {
		return fmt.Errorf("%w: account %s would exceed its daily limit", apperrors.ErrInsufficientFunds, account.UID)
	}
	return nil
}

// Credit writes the credit half of a transfer. Credits never reduce what is
// available, so no lock or balance check is needed.
func (s *accountService) Credit(ctx context.Context, accountUID string, debitNote domain.DebitNote) (domain.CreditNote, error) {
	if accountUID == debitNote.AccountUID {
		return domain.CreditNote{}, fmt.Errorf("%w: cannot credit %s with its own debit", apperrors.ErrAccount, accountUID)
	}
	if _, err := s.GetAccount(ctx, accountUID); err != nil {
		return domain.CreditNote{}, err
	}
	now, err := s.safeNow(ctx)
	if err != nil {
		return domain.CreditNote{}, err
	}

	code := domain.CodeCredit
	if debitNote.IsProvisional {
		code = domain.CodeReceivable
	}
	entry, err := s.newEntry(now, domain.LineItem{Code: code, Value: debitNote.Value()})
	if err != nil {
		return domain.CreditNote{}, err
	}
	doc := portsrepo.LineItemDocument{NoteUID: debitNote.UID, Authorisation: debitNote.Authorisation, Reason: reasonCredit, CreatedAt: now}
	if err := s.accountRepo.WriteLineItem(ctx, accountUID, entry, doc); err != nil {
		s.LogError(ctx, err, "Credit failed", slog.String("account_uid", accountUID), slog.String("debit_note_uid", debitNote.UID))
		return domain.CreditNote{}, err
	}

	return domain.CreditNote{
		UID:             entry.UID,
		DebitNoteUID:    debitNote.UID,
		Timestamp:       now,
		AccountUID:      accountUID,
		DebitAccountUID: debitNote.AccountUID,
		Value:           debitNote.Value(),
		IsProvisional:   debitNote.IsProvisional,
	}, nil
}

// Post writes a settlement or compensation line item under the account
// mutex. Refund and receipt obligations are honoured even beyond the
// overdraft limit.
func (s *accountService) Post(ctx context.Context, accountUID string, item domain.LineItem, noteUID string, auth domain.Authorisation, reason string) (domain.LineItemEntry, error) {
	if _, err := s.GetAccount(ctx, accountUID); err != nil {
		return domain.LineItemEntry{}, err
	}
	var entry domain.LineItemEntry
	err := s.withAccountLock(ctx, accountUID, func(ctx context.Context, now time.Time) error {
		var err error
		entry, err = s.writeItem(ctx, accountUID, now, item, noteUID, auth, reason)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post line item",
			slog.String("account_uid", accountUID), slog.String("code", string(item.Code)), slog.String("reason", reason))
		return domain.LineItemEntry{}, err
	}
	return entry, nil
}

func (s *accountService) writeItem(ctx context.Context, accountUID string, now time.Time, item domain.LineItem, noteUID string, auth domain.Authorisation, reason string) (domain.LineItemEntry, error) {
	entry, err := s.newEntry(now, item)
	if err != nil {
		return domain.LineItemEntry{}, err
	}
	doc := portsrepo.LineItemDocument{NoteUID: noteUID, Authorisation: auth, Reason: reason, CreatedAt: now}
	if err := s.accountRepo.WriteLineItem(ctx, accountUID, entry, doc); err != nil {
		return domain.LineItemEntry{}, err
	}
	return entry, nil
}

func (s *accountService) RemoveLineItem(ctx context.Context, accountUID string, entry domain.LineItemEntry) error {
	err := s.withAccountLock(ctx, accountUID, func(ctx context.Context, _ time.Time) error {
		return s.accountRepo.DeleteLineItem(ctx, accountUID, entry)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to remove line item", slog.String("account_uid", accountUID), slog.String("note_uid", entry.UID))
		return err
	}
	return nil
}

// Withdraw takes back a line item written earlier today by deleting it, so
// daily spending is restored as well. An item from an earlier day may
// already be part of a snapshot, so it is offset with reversal instead.
func (s *accountService) Withdraw(ctx context.Context, accountUID string, entry domain.LineItemEntry, reversal domain.LineItem, noteUID string, auth domain.Authorisation) error {
	written, err := domain.NoteUIDTime(entry.UID)
	if err != nil {
		return err
	}
	err = s.withAccountLock(ctx, accountUID, func(ctx context.Context, now time.Time) error {
		if startOfDay(written).Equal(startOfDay(now)) {
			return s.accountRepo.DeleteLineItem(ctx, accountUID, entry)
		}
		_, err := s.writeItem(ctx, accountUID, now, reversal, noteUID, auth, reasonCompensation)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to withdraw line item",
			slog.String("account_uid", accountUID), slog.String("note_uid", entry.UID), slog.String("code", string(entry.Item.Code)))
		return err
	}
	return nil
}

func (s *accountService) SetOverdraftLimit(ctx context.Context, accountUID string, limit domain.BoundedDecimal, principal string) (domain.Account, error) {
	if limit.IsNegative() {
		return domain.Account{}, fmt.Errorf("%w: overdraft limit cannot be negative", apperrors.ErrAccount)
	}

	var updated domain.Account
	err := mutex.WithLock(ctx, s.locker, accountLockKey(accountUID), s.lockOpts, func(ctx context.Context) error {
		account, err := s.GetAccount(ctx, accountUID)
		if err != nil {
			return err
		}
		now := s.now()
		state, err := s.currentState(ctx, accountUID, now)
		if err != nil {
			return err
		}
		beyond, err := state.IsBeyondOverdraft(limit)
		if err != nil {
			return err
		}
		if beyond {
			return fmt.Errorf("%w: account %s is already beyond an overdraft of %s, keeping %s",
				apperrors.ErrAccount, accountUID, limit, account.OverdraftLimit)
		}
		account.OverdraftLimit = limit
		account.LastUpdatedAt = now
		account.LastUpdatedBy = principal
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.LogInfo(ctx, "Overdraft limit changed", slog.String("account_uid", accountUID), slog.String("limit", limit.String()))
	return updated, nil
}

func (s *accountService) SetMaximumDailyLimit(ctx context.Context, accountUID string, limit domain.BoundedDecimal, principal string) (domain.Account, error) {
	if limit.IsNegative() {
		return domain.Account{}, fmt.Errorf("%w: daily limit cannot be negative", apperrors.ErrAccount)
	}

	var updated domain.Account
	err := mutex.WithLock(ctx, s.locker, accountLockKey(accountUID), s.lockOpts, func(ctx context.Context) error {
		account, err := s.GetAccount(ctx, accountUID)
		if err != nil {
			return err
		}
		account.MaximumDailyLimit = limit
		account.LastUpdatedAt = s.now()
		account.LastUpdatedBy = principal
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.LogInfo(ctx, "Daily limit changed", slog.String("account_uid", accountUID), slog.String("limit", limit.String()))
	return updated, nil
}

// ListLineItems returns one page of the statement of day. The page token
// carries the account, the day and the last note UID returned.
func (s *accountService) ListLineItems(ctx context.Context, accountUID string, day time.Time, params dto.ListLineItemsParams) (*dto.ListLineItemsResponse, error) {
	if _, err := s.GetAccount(ctx, accountUID); err != nil {
		return nil, err
	}
	day = startOfDay(day)
	limit := params.Limit
	if limit <= 0 {
		limit = defaultStatementLimit
	}
	if limit > maxStatementLimit {
		limit = maxStatementLimit
	}

	after := ""
	if params.NextToken != nil && *params.NextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*params.NextToken)
		if err != nil || len(fields) != 3 || fields[0] != accountUID || fields[1] != day.Format(domain.DayFormat) {
			return nil, fmt.Errorf("%w: invalid statement page token", apperrors.ErrValidation)
		}
		after = fields[2]
	}

	entries, err := s.accountRepo.ListLineItems(ctx, accountUID, day)
	if err != nil {
		s.LogError(ctx, err, "Failed to list line items", slog.String("account_uid", accountUID))
		return nil, err
	}

	resp := &dto.ListLineItemsResponse{Items: make([]dto.LineItemResponse, 0, limit)}
	for _, e := range entries {
		if after != "" && e.UID <= after {
			continue
		}
		if len(resp.Items) == limit {
			token := pagination.EncodeMultiFieldToken(accountUID, day.Format(domain.DayFormat), resp.Items[len(resp.Items)-1].UID)
			resp.NextToken = &token
			break
		}
		ts, _ := domain.NoteUIDTime(e.UID)
		line := dto.LineItemResponse{UID: e.UID, Code: e.Item.Code, Value: e.Item.Value.String(), Timestamp: ts}
		if e.Item.Code == domain.CodeReceivedReceipt || e.Item.Code == domain.CodeSentReceipt {
			line.ReceiptedValue = e.Item.ReceiptedValue.String()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp, nil
}

// parseLimit parses an optional non-negative limit; empty means zero.
func parseLimit(field, v string) (domain.BoundedDecimal, error) {
	if strings.TrimSpace(v) == "" {
		return domain.Zero, nil
	}
	limit, err := domain.ParseBoundedDecimal(v)
	if err != nil {
		return domain.Zero, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, field, err)
	}
	if limit.IsNegative() {
		return domain.Zero, fmt.Errorf("%w: %s cannot be negative", apperrors.ErrAccount, field)
	}
	return limit, nil
}
