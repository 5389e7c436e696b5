package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
)

// DefaultLedgerLockOptions guard transaction state transitions. The long
// lease lets a crashed holder be taken over without deadlocking the ledger.
var DefaultLedgerLockOptions = portsrepo.LockOptions{Timeout: 600 * time.Second, Lease: 600 * time.Second}

// ledgerService implements the LedgerSvc interface
type ledgerService struct {
	BaseService
	accounts portssvc.AccountSvcFacade
	records  portsrepo.TransactionRecordRepositoryFacade
	locker   portsrepo.Locker
	lockOpts portsrepo.LockOptions
	alerts   portssvc.AlertPublisher
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerVerifier sets the verifier for receipt and refund authorisations.
func WithLedgerVerifier(v portssvc.AuthorisationVerifier) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Verifier = v
	}
}

// WithLedgerLockOptions overrides the transaction lock timeout and lease.
func WithLedgerLockOptions(opts portsrepo.LockOptions) LedgerServiceOption {
	return func(s *ledgerService) {
		s.lockOpts = opts
	}
}

// WithAlertPublisher sets where unbalanced-ledger alerts are sent.
func WithAlertPublisher(p portssvc.AlertPublisher) LedgerServiceOption {
	return func(s *ledgerService) {
		s.alerts = p
	}
}

// WithLedgerClock replaces time.Now for record timestamps.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Now = now
	}
}

// NewLedgerService creates the ledger orchestration service.
func NewLedgerService(accounts portssvc.AccountSvcFacade, records portsrepo.TransactionRecordRepositoryFacade, locker portsrepo.Locker, options ...LedgerServiceOption) portssvc.LedgerSvc {
	svc := &ledgerService{
		BaseService: newBaseService(),
		accounts:    accounts,
		records:     records,
		locker:      locker,
		lockOpts:    DefaultLedgerLockOptions,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

func transactionLockKey(uid string) string { return "transaction/" + uid }

func (s *ledgerService) PerformOne(ctx context.Context, tx domain.Transaction, debitAccountUID, creditAccountUID string, auth domain.Authorisation, isProvisional bool) (domain.TransactionRecord, error) {
	if tx.IsZero() {
		return domain.TransactionRecord{}, fmt.Errorf("%w: nothing to transfer for a zero-value transaction", apperrors.ErrTransaction)
	}
	records, err := s.Perform(ctx, []domain.Transaction{tx}, debitAccountUID, creditAccountUID, auth, isProvisional)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	return records[0], nil
}

func (s *ledgerService) Perform(ctx context.Context, txs []domain.Transaction, debitAccountUID, creditAccountUID string, auth domain.Authorisation, isProvisional bool) ([]domain.TransactionRecord, error) {
	if debitAccountUID == creditAccountUID {
		return nil, fmt.Errorf("%w: cannot transfer from account %s to itself", apperrors.ErrLedger, debitAccountUID)
	}
	transfers := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		if !tx.IsZero() {
			transfers = append(transfers, tx)
		}
	}
	if len(transfers) == 0 {
		return []domain.TransactionRecord{}, nil
	}

	debits := make([]domain.DebitNote, 0, len(transfers))
	for _, tx := range transfers {
		note, err := s.accounts.Debit(ctx, debitAccountUID, tx, auth, isProvisional)
		if err != nil {
			return nil, s.compensate(ctx, err, debits, nil)
		}
		debits = append(debits, note)
	}

	credits := make([]domain.CreditNote, 0, len(debits))
	for _, d := range debits {
		note, err := s.accounts.Credit(ctx, creditAccountUID, d)
		if err != nil {
			return nil, s.compensate(ctx, err, debits, credits)
		}
		credits = append(credits, note)
	}

	pairs, err := domain.CreatePairedNotes(debits, credits)
	if err != nil {
		return nil, s.compensate(ctx, err, debits, credits)
	}

	now := s.now()
	records := make([]domain.TransactionRecord, 0, len(pairs))
	for _, p := range pairs {
		record := domain.NewTransactionRecord(p, now)
		if err := s.records.SaveTransactionRecord(ctx, record); err != nil {
			failures := s.discardRecords(ctx, records)
			return nil, s.compensate(ctx, err, debits, credits, failures...)
		}
		records = append(records, record)
	}

	s.LogInfo(ctx, "Transactions performed",
		slog.String("debit_account_uid", debitAccountUID),
		slog.String("credit_account_uid", creditAccountUID),
		slog.Int("count", len(records)),
		slog.Bool("provisional", isProvisional))
	return records, nil
}

// compensate withdraws every written note and returns cause. If any
// withdrawal fails the ledger is unbalanced: the error is escalated once and
// an alert raised. A cause that is already unbalanced is merged, not wrapped.
func (s *ledgerService) compensate(ctx context.Context, cause error, debits []domain.DebitNote, credits []domain.CreditNote, failures ...error) error {
	ctx = context.WithoutCancel(ctx)

	var unbalanced *apperrors.UnbalancedLedgerError
	if errors.As(cause, &unbalanced) {
		failures = append(append([]error(nil), unbalanced.Compensations...), failures...)
		cause = unbalanced.Cause
	}

	for _, c := range credits {
		entry := domain.LineItemEntry{UID: c.UID, Item: domain.LineItem{Code: domain.CodeCredit, Value: c.Value}}
		reversal := domain.LineItem{Code: domain.CodeSentRefund, Value: c.Value}
		if c.IsProvisional {
			entry.Item.Code = domain.CodeReceivable
			reversal = domain.LineItem{Code: domain.CodeSentReceipt, Value: c.Value, ReceiptedValue: domain.Zero}
		}
		if err := s.accounts.Withdraw(ctx, c.AccountUID, entry, reversal, c.DebitNoteUID, domain.Authorisation{}); err != nil {
			failures = append(failures, fmt.Errorf("withdrawing credit %s on %s: %w", c.UID, c.AccountUID, err))
		}
	}
	for _, d := range debits {
		entry := domain.LineItemEntry{UID: d.UID, Item: domain.LineItem{Code: domain.CodeDebit, Value: d.Value()}}
		reversal := domain.LineItem{Code: domain.CodeReceivedRefund, Value: d.Value()}
		if d.IsProvisional {
			entry.Item.Code = domain.CodeCurrentLiability
			reversal = domain.LineItem{Code: domain.CodeReceivedReceipt, Value: d.Value(), ReceiptedValue: domain.Zero}
		}
		if err := s.accounts.Withdraw(ctx, d.AccountUID, entry, reversal, d.UID, d.Authorisation); err != nil {
			failures = append(failures, fmt.Errorf("withdrawing debit %s on %s: %w", d.UID, d.AccountUID, err))
		}
	}

	if len(failures) == 0 {
		if len(debits) > 0 {
			s.LogInfo(ctx, "Compensated partially performed transfer",
				slog.Int("debits", len(debits)), slog.Int("credits", len(credits)), slog.String("cause", cause.Error()))
		}
		return cause
	}

	var txUID string
	accounts := make([]string, 0, 2)
	if len(debits) > 0 {
		txUID = debits[0].UID
		accounts = append(accounts, debits[0].AccountUID)
	}
	if len(credits) > 0 {
		accounts = append(accounts, credits[0].AccountUID)
	}
	return s.escalate(ctx, cause, failures, txUID, accounts)
}

func (s *ledgerService) discardRecords(ctx context.Context, records []domain.TransactionRecord) []error {
	var failures []error
	for _, r := range records {
		if err := s.records.DeleteTransactionRecord(context.WithoutCancel(ctx), r.UID); err != nil {
			failures = append(failures, fmt.Errorf("discarding record %s: %w", r.UID, err))
		}
	}
	return failures
}

// escalate wraps cause in an UnbalancedLedgerError and alerts operators.
// It is never retried.
func (s *ledgerService) escalate(ctx context.Context, cause error, failures []error, txUID string, accounts []string) error {
	unbalanced := &apperrors.UnbalancedLedgerError{Cause: cause, Compensations: failures}
	s.LogError(ctx, unbalanced, "Ledger is unbalanced, manual reconciliation required",
		slog.Bool("alert", true),
		slog.String("transaction_uid", txUID),
		slog.Any("account_uids", accounts))

	if s.alerts != nil {
		msgs := make([]string, 0, len(failures))
		for _, f := range failures {
			msgs = append(msgs, f.Error())
		}
		alert := domain.LedgerAlert{
			Kind:           domain.AlertUnbalancedLedger,
			TransactionUID: txUID,
			AccountUIDs:    accounts,
			Cause:          cause.Error(),
			Compensations:  msgs,
			RaisedAt:       s.now(),
		}
		if err := s.alerts.PublishAlert(context.WithoutCancel(ctx), alert); err != nil {
			s.LogError(ctx, err, "Failed to publish ledger alert", slog.String("transaction_uid", txUID))
		}
	}
	return unbalanced
}

// transition loads a record under its transaction lock, runs check, and
// moves it from one state to another. update may attach settlement data.
func (s *ledgerService) transition(ctx context.Context, uid string, from, to domain.TransactionState,
	check func(domain.TransactionRecord) error,
	update func(domain.TransactionRecord) domain.TransactionRecord,
) (domain.TransactionRecord, error) {
	var out domain.TransactionRecord
	err := mutex.WithLock(ctx, s.locker, transactionLockKey(uid), s.lockOpts, func(ctx context.Context) error {
		record, err := s.records.FindTransactionRecord(ctx, uid)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(record); err != nil {
				return err
			}
		}
		if record.State != from {
			return fmt.Errorf("%w: transaction %s is %s, expected %s", apperrors.ErrLedger, uid, record.State, from)
		}
		next := record.WithState(to, s.now())
		if update != nil {
			next = update(next)
		}
		if err := s.records.SaveTransactionRecord(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// postedItem is a settlement line item that may have to be removed again.
type postedItem struct {
	accountUID string
	entry      domain.LineItemEntry
}

// abandonSettlement removes the settlement items written so far and puts
// the record back into its previous state.
func (s *ledgerService) abandonSettlement(ctx context.Context, record domain.TransactionRecord, from, to domain.TransactionState, cause error, written []postedItem) error {
	ctx = context.WithoutCancel(ctx)
	var failures []error
	for i := len(written) - 1; i >= 0; i-- {
		p := written[i]
		if err := s.accounts.RemoveLineItem(ctx, p.accountUID, p.entry); err != nil {
			failures = append(failures, fmt.Errorf("removing %s from %s: %w", p.entry.UID, p.accountUID, err))
		}
	}
	if _, err := s.transition(ctx, record.UID, from, to, nil, nil); err != nil {
		failures = append(failures, fmt.Errorf("reverting %s to %s: %w", record.UID, to, err))
	}
	if len(failures) > 0 {
		return s.escalate(ctx, cause, failures, record.UID, []string{record.DebitAccountUID(), record.CreditAccountUID()})
	}
	s.LogInfo(ctx, "Settlement abandoned", slog.String("transaction_uid", record.UID), slog.String("state", to.String()), slog.String("cause", cause.Error()))
	return cause
}

func (s *ledgerService) Receipt(ctx context.Context, receipt domain.Receipt) (domain.TransactionRecord, error) {
	if _, err := domain.NewReceipt(receipt.CreditNote, receipt.Authorisation, receipt.ReceiptedValue); err != nil {
		return domain.TransactionRecord{}, err
	}
	if err := s.Authorise(ctx, receipt.Authorisation, domain.AccountResource(receipt.CreditNote.AccountUID)); err != nil {
		return domain.TransactionRecord{}, err
	}

	uid := receipt.TransactionUID()
	record, err := s.transition(ctx, uid, domain.StateProvisional, domain.StateReceipting,
		func(r domain.TransactionRecord) error { return r.AssertMatchingReceipt(receipt) }, nil)
	if err != nil {
		s.logSettlementFailure(ctx, err, "Receipt rejected", uid)
		return domain.TransactionRecord{}, err
	}

	// The record is now RECEIPTING; finish regardless of caller cancellation.
	ctx = context.WithoutCancel(ctx)
	var written []postedItem
	debitItem := domain.LineItem{Code: domain.CodeReceivedReceipt, Value: record.Value(), ReceiptedValue: receipt.ReceiptedValue}
	entry, err := s.accounts.Post(ctx, record.DebitAccountUID(), debitItem, uid, receipt.Authorisation, reasonReceipt)
	if err != nil {
		return domain.TransactionRecord{}, s.abandonSettlement(ctx, record, domain.StateReceipting, domain.StateProvisional, err, written)
	}
	written = append(written, postedItem{accountUID: record.DebitAccountUID(), entry: entry})

	creditItem := domain.LineItem{Code: domain.CodeSentReceipt, Value: record.Value(), ReceiptedValue: receipt.ReceiptedValue}
	entry, err = s.accounts.Post(ctx, record.CreditAccountUID(), creditItem, uid, receipt.Authorisation, reasonReceipt)
	if err != nil {
		return domain.TransactionRecord{}, s.abandonSettlement(ctx, record, domain.StateReceipting, domain.StateProvisional, err, written)
	}
	written = append(written, postedItem{accountUID: record.CreditAccountUID(), entry: entry})

	final, err := s.transition(ctx, uid, domain.StateReceipting, domain.StateReceipted, nil,
		func(r domain.TransactionRecord) domain.TransactionRecord {
			r.Receipt = &receipt
			return r
		})
	if err != nil {
		return domain.TransactionRecord{}, s.abandonSettlement(ctx, record, domain.StateReceipting, domain.StateProvisional, err, written)
	}

	s.LogInfo(ctx, "Transaction receipted",
		slog.String("transaction_uid", uid),
		slog.String("value", record.Value().String()),
		slog.String("receipted_value", receipt.ReceiptedValue.String()))
	return final, nil
}

func (s *ledgerService) Refund(ctx context.Context, refund domain.Refund) (domain.TransactionRecord, error) {
	if _, err := domain.NewRefund(refund.CreditNote, refund.Authorisation); err != nil {
		return domain.TransactionRecord{}, err
	}
	if err := s.Authorise(ctx, refund.Authorisation, domain.AccountResource(refund.CreditNote.AccountUID)); err != nil {
		return domain.TransactionRecord{}, err
	}

	uid := refund.TransactionUID()
	record, err := s.transition(ctx, uid, domain.StateDirect, domain.StateRefunding,
		func(r domain.TransactionRecord) error {
			if r.State == domain.StateProvisional {
				return fmt.Errorf("%w: transaction %s is provisional, receipt it for zero instead of refunding", apperrors.ErrTransaction, uid)
			}
			return r.AssertMatchingRefund(refund)
		}, nil)
	if err != nil {
		s.logSettlementFailure(ctx, err, "Refund rejected", uid)
		return domain.TransactionRecord{}, err
	}

	ctx = context.WithoutCancel(ctx)
	var written []postedItem
	sent := domain.LineItem{Code: domain.CodeSentRefund, Value: record.Value()}
	entry, err := s.accounts.Post(ctx, record.CreditAccountUID(), sent, uid, refund.Authorisation, reasonRefund)
	if err != nil {
		return domain.TransactionRecord{}, s.abandonSettlement(ctx, record, domain.StateRefunding, domain.StateDirect, err, written)
	}
	written = append(written, postedItem{accountUID: record.CreditAccountUID(), entry: entry})

	received := domain.LineItem{Code: domain.CodeReceivedRefund, Value: record.Value()}
	entry, err = s.accounts.Post(ctx, record.DebitAccountUID(), received, uid, refund.Authorisation, reasonRefund)
	if err != nil {
		return domain.TransactionRecord{}, s.abandonSettlement(ctx, record, domain.StateRefunding, domain.StateDirect, err, written)
	}
	written = append(written, postedItem{accountUID: record.DebitAccountUID(), entry: entry})

	final, err := s.transition(ctx, uid, domain.StateRefunding, domain.StateRefunded, nil,
		func(r domain.TransactionRecord) domain.TransactionRecord {
			r.Refund = &refund
			return r
		})
	if err != nil {
		return domain.TransactionRecord{}, s.abandonSettlement(ctx, record, domain.StateRefunding, domain.StateDirect, err, written)
	}

	s.LogInfo(ctx, "Transaction refunded", slog.String("transaction_uid", uid), slog.String("value", record.Value().String()))
	return final, nil
}

func (s *ledgerService) LoadTransaction(ctx context.Context, uid string) (domain.TransactionRecord, error) {
	record, err := s.records.FindTransactionRecord(ctx, uid)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_uid", uid))
		}
		return domain.TransactionRecord{}, err
	}
	return record, nil
}

// logSettlementFailure keeps expected caller errors at warn level.
func (s *ledgerService) logSettlementFailure(ctx context.Context, err error, msg, uid string) {
	switch {
	case errors.Is(err, apperrors.ErrLedger), errors.Is(err, apperrors.ErrTransaction),
		errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrMutexTimeout):
		s.GetLogger(ctx).Warn(msg, slog.String("transaction_uid", uid), slog.String("error", err.Error()))
	default:
		s.LogError(ctx, err, msg, slog.String("transaction_uid", uid))
	}
}
