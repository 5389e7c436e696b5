package domain

import (
	"fmt"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
)

// Receipt settles a provisional transaction for ReceiptedValue, which may
// be anything from zero up to the reserved value.
type Receipt struct {
	CreditNote     CreditNote     `json:"creditNote"`
	Authorisation  Authorisation  `json:"authorisation"`
	ReceiptedValue BoundedDecimal `json:"receiptedValue"`
}

// NewReceipt validates a receipt against the note it settles.
func NewReceipt(note CreditNote, auth Authorisation, receipted BoundedDecimal) (Receipt, error) {
	if !note.IsProvisional {
		return Receipt{}, fmt.Errorf("%w: cannot receipt non-provisional transaction %s", apperrors.ErrTransaction, note.DebitNoteUID)
	}
	if receipted.IsNegative() || receipted.GreaterThan(note.Value) {
		return Receipt{}, fmt.Errorf("%w: receipted value %s must be between 0 and %s", apperrors.ErrTransaction, receipted, note.Value)
	}
	return Receipt{CreditNote: note, Authorisation: auth, ReceiptedValue: receipted}, nil
}

// TransactionUID is the UID of the transaction being receipted.
func (r Receipt) TransactionUID() string { return r.CreditNote.DebitNoteUID }

// Value is the provisional value being settled.
func (r Receipt) Value() BoundedDecimal { return r.CreditNote.Value }

// CreateReceipts builds one receipt per note. When receiptedTotal is less
// than the notes' combined value, the shortfall is drained from each note
// in list order before moving to the next.
func CreateReceipts(notes []CreditNote, auth Authorisation, receiptedTotal BoundedDecimal) ([]Receipt, error) {
	total := Zero
	for _, n := range notes {
		var err error
		if total, err = total.Add(n.Value); err != nil {
			return nil, err
		}
	}
	if receiptedTotal.IsNegative() || receiptedTotal.GreaterThan(total) {
		return nil, fmt.Errorf("%w: receipted value %s must be between 0 and %s", apperrors.ErrTransaction, receiptedTotal, total)
	}

	deficit, err := total.Sub(receiptedTotal)
	if err != nil {
		return nil, err
	}
	receipts := make([]Receipt, 0, len(notes))
	for _, n := range notes {
		value := n.Value
		if deficit.IsPositive() {
			drained := deficit.Min(value)
			if value, err = value.Sub(drained); err != nil {
				return nil, err
			}
			if deficit, err = deficit.Sub(drained); err != nil {
				return nil, err
			}
		}
		r, err := NewReceipt(n, auth, value)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// Refund reverses a completed transaction in full.
type Refund struct {
	CreditNote    CreditNote    `json:"creditNote"`
	Authorisation Authorisation `json:"authorisation"`
}

// NewRefund rejects provisional notes, which must be receipted for zero instead.
func NewRefund(note CreditNote, auth Authorisation) (Refund, error) {
	if note.IsProvisional {
		return Refund{}, fmt.Errorf("%w: cannot refund provisional transaction %s, receipt it for zero instead", apperrors.ErrTransaction, note.DebitNoteUID)
	}
	return Refund{CreditNote: note, Authorisation: auth}, nil
}

// TransactionUID is the UID of the transaction being refunded.
func (r Refund) TransactionUID() string { return r.CreditNote.DebitNoteUID }

// Value is the refunded value.
func (r Refund) Value() BoundedDecimal { return r.CreditNote.Value }

// CreateRefunds builds one refund per note.
func CreateRefunds(notes []CreditNote, auth Authorisation) ([]Refund, error) {
	refunds := make([]Refund, 0, len(notes))
	for _, n := range notes {
		r, err := NewRefund(n, auth)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, r)
	}
	return refunds, nil
}
