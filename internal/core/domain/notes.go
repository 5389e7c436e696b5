package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
)

// DebitNote records value leaving an account for one Transaction.
type DebitNote struct {
	UID           string        `json:"uid"` // Date-prefixed, also the transaction record UID
	Timestamp     time.Time     `json:"timestamp"`
	AccountUID    string        `json:"accountUID"`
	Transaction   Transaction   `json:"transaction"`
	Authorisation Authorisation `json:"authorisation"`
	IsProvisional bool          `json:"isProvisional"`
}

// Value is the debited value.
func (n DebitNote) Value() BoundedDecimal { return n.Transaction.Value }

// CreditNote records value entering an account to settle a DebitNote.
type CreditNote struct {
	UID             string         `json:"uid"`          // UID of the credit line item
	DebitNoteUID    string         `json:"debitNoteUID"` // Always the settled DebitNote's UID
	Timestamp       time.Time      `json:"timestamp"`
	AccountUID      string         `json:"accountUID"`
	DebitAccountUID string         `json:"debitAccountUID"`
	Value           BoundedDecimal `json:"value"`
	IsProvisional   bool           `json:"isProvisional"`
}

// CreditAccountUID is an alias kept for symmetry with DebitAccountUID.
func (n CreditNote) CreditAccountUID() string { return n.AccountUID }

// PairedNote joins the two halves of one transaction.
type PairedNote struct {
	Debit  DebitNote  `json:"debitNote"`
	Credit CreditNote `json:"creditNote"`
}

// NewPairedNote checks both notes refer to the same transaction.
func NewPairedNote(debit DebitNote, credit CreditNote) (PairedNote, error) {
	if debit.UID != credit.DebitNoteUID {
		return PairedNote{}, fmt.Errorf("%w: cannot pair debit note %s with credit note for %s", apperrors.ErrTransaction, debit.UID, credit.DebitNoteUID)
	}
	if debit.AccountUID != credit.DebitAccountUID {
		return PairedNote{}, fmt.Errorf("%w: credit note %s names debit account %s, not %s", apperrors.ErrTransaction, credit.UID, credit.DebitAccountUID, debit.AccountUID)
	}
	if credit.Value.GreaterThan(debit.Value()) {
		return PairedNote{}, fmt.Errorf("%w: credit %s exceeds debit %s", apperrors.ErrTransaction, credit.Value, debit.Value())
	}
	return PairedNote{Debit: debit, Credit: credit}, nil
}

// UID is the shared transaction UID.
func (p PairedNote) UID() string { return p.Debit.UID }

// CreatePairedNotes zips parallel lists of notes, failing on any misalignment.
func CreatePairedNotes(debits []DebitNote, credits []CreditNote) ([]PairedNote, error) {
	if len(debits) != len(credits) {
		return nil, fmt.Errorf("%w: %d debit notes cannot pair with %d credit notes", apperrors.ErrTransaction, len(debits), len(credits))
	}
	pairs := make([]PairedNote, 0, len(debits))
	for i := range debits {
		p, err := NewPairedNote(debits[i], credits[i])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
