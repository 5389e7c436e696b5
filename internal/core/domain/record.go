package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
)

// TransactionState is the lifecycle tag of a TransactionRecord.
type TransactionState string

const (
	StateDirect      TransactionState = "DR"
	StateProvisional TransactionState = "PR"
	StateReceipting  TransactionState = "RC"
	StateReceipted   TransactionState = "RD"
	StateRefunding   TransactionState = "RF"
	StateRefunded    TransactionState = "RR"
)

func (s TransactionState) IsValid() bool {
	switch s {
	case StateDirect, StateProvisional, StateReceipting, StateReceipted, StateRefunding, StateRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s TransactionState) IsTerminal() bool {
	return s == StateReceipted || s == StateRefunded
}

func (s TransactionState) String() string {
	switch s {
	case StateDirect:
		return "DIRECT"
	case StateProvisional:
		return "PROVISIONAL"
	case StateReceipting:
		return "RECEIPTING"
	case StateReceipted:
		return "RECEIPTED"
	case StateRefunding:
		return "REFUNDING"
	case StateRefunded:
		return "REFUNDED"
	}
	return fmt.Sprintf("UNKNOWN(%s)", string(s))
}

// TransactionRecord is the persisted audit record of one transaction.
type TransactionRecord struct {
	UID        string           `json:"uid"` // Same as the DebitNote UID
	DebitNote  DebitNote        `json:"debitNote"`
	CreditNote CreditNote       `json:"creditNote"`
	State      TransactionState `json:"state"`
	Receipt    *Receipt         `json:"receipt,omitempty"`
	Refund     *Refund          `json:"refund,omitempty"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// NewTransactionRecord builds the record for a freshly performed pair.
func NewTransactionRecord(pair PairedNote, now time.Time) TransactionRecord {
	state := StateDirect
	if pair.Debit.IsProvisional {
		state = StateProvisional
	}
	return TransactionRecord{
		UID:        pair.UID(),
		DebitNote:  pair.Debit,
		CreditNote: pair.Credit,
		State:      state,
		UpdatedAt:  now,
	}
}

// Value is the transaction value.
func (r TransactionRecord) Value() BoundedDecimal { return r.DebitNote.Value() }

func (r TransactionRecord) DebitAccountUID() string  { return r.DebitNote.AccountUID }
func (r TransactionRecord) CreditAccountUID() string { return r.CreditNote.AccountUID }

// WithState returns a copy in the new state. Records are never mutated in place.
func (r TransactionRecord) WithState(state TransactionState, now time.Time) TransactionRecord {
	r.State = state
	r.UpdatedAt = now
	return r
}

func (r TransactionRecord) matches(note CreditNote) bool {
	return r.UID == note.DebitNoteUID &&
		r.DebitAccountUID() == note.DebitAccountUID &&
		r.CreditAccountUID() == note.AccountUID &&
		r.Value().Equal(note.Value)
}

// AssertMatchingReceipt checks the receipt refers to this transaction.
func (r TransactionRecord) AssertMatchingReceipt(receipt Receipt) error {
	if !r.matches(receipt.CreditNote) {
		return fmt.Errorf("%w: receipt for %s (%s -> %s, %s) does not match record %s (%s -> %s, %s)",
			apperrors.ErrUnmatchedReceipt,
			receipt.TransactionUID(), receipt.CreditNote.DebitAccountUID, receipt.CreditNote.AccountUID, receipt.Value(),
			r.UID, r.DebitAccountUID(), r.CreditAccountUID(), r.Value())
	}
	return nil
}

// AssertMatchingRefund checks the refund refers to this transaction.
func (r TransactionRecord) AssertMatchingRefund(refund Refund) error {
	if !r.matches(refund.CreditNote) {
		return fmt.Errorf("%w: refund for %s (%s -> %s, %s) does not match record %s (%s -> %s, %s)",
			apperrors.ErrUnmatchedRefund,
			refund.TransactionUID(), refund.CreditNote.DebitAccountUID, refund.CreditNote.AccountUID, refund.Value(),
			r.UID, r.DebitAccountUID(), r.CreditAccountUID(), r.Value())
	}
	return nil
}
