package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrRange indicates a monetary value outside the supported bounds.
var ErrRange = errors.New("value out of range")

// ErrInsufficientFunds indicates a debit would take an account beyond its overdraft limit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrMutexTimeout indicates a lock could not be acquired before the timeout. Retryable.
var ErrMutexTimeout = errors.New("timed out acquiring mutex")

// ErrAccount indicates an invalid account operation or input.
var ErrAccount = errors.New("account error")

// ErrTransaction indicates a malformed transaction, note, receipt or refund.
var ErrTransaction = errors.New("transaction error")

// ErrLedger indicates an invalid transaction state transition.
var ErrLedger = errors.New("ledger error")

// ErrUnmatchedReceipt indicates a receipt that does not correspond to its transaction.
var ErrUnmatchedReceipt = errors.New("receipt does not match transaction")

// ErrUnmatchedRefund indicates a refund that does not correspond to its transaction.
var ErrUnmatchedRefund = errors.New("refund does not match transaction")

// ErrUnbalancedLedger indicates a failed compensation. The ledger needs manual reconciliation.
var ErrUnbalancedLedger = errors.New("ledger is unbalanced")

// ErrPermission indicates an authorisation that does not grant access to the resource.
var ErrPermission = errors.New("permission denied")

// ErrMalformed indicates stored data that could not be decoded.
var ErrMalformed = errors.New("malformed data")

// UnbalancedLedgerError carries the operation error that triggered compensation
// and every compensation that failed afterwards.
type UnbalancedLedgerError struct {
	Cause         error
	Compensations []error
}

func (e *UnbalancedLedgerError) Error() string {
	msgs := make([]string, 0, len(e.Compensations))
	for _, c := range e.Compensations {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("%s: compensating for [%v] failed: %s", ErrUnbalancedLedger, e.Cause, strings.Join(msgs, "; "))
}

// Unwrap exposes both the sentinel and the original cause to errors.Is.
func (e *UnbalancedLedgerError) Unwrap() []error {
	return []error{ErrUnbalancedLedger, e.Cause}
}
