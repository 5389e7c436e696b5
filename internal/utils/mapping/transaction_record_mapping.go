package mapping

import (
	"fmt"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/SscSPs/acquire_ledger/internal/dto"
)

// ToTransactionRecordDocument converts a domain TransactionRecord to its stored document
func ToTransactionRecordDocument(r domain.TransactionRecord) dto.TransactionRecordDocument {
	debitProvisional := r.DebitNote.IsProvisional
	creditProvisional := r.CreditNote.IsProvisional
	doc := dto.TransactionRecordDocument{
		UID:   r.UID,
		State: string(r.State),
		DebitNote: &dto.DebitNoteDocument{
			UID:           r.DebitNote.UID,
			Timestamp:     r.DebitNote.Timestamp,
			AccountUID:    r.DebitNote.AccountUID,
			Value:         r.DebitNote.Transaction.Value.String(),
			Description:   r.DebitNote.Transaction.Description,
			Authorisation: r.DebitNote.Authorisation.Token,
			IsProvisional: &debitProvisional,
		},
		CreditNote: &dto.CreditNoteDocument{
			UID:             r.CreditNote.UID,
			DebitNoteUID:    r.CreditNote.DebitNoteUID,
			Timestamp:       r.CreditNote.Timestamp,
			AccountUID:      r.CreditNote.AccountUID,
			DebitAccountUID: r.CreditNote.DebitAccountUID,
			Value:           r.CreditNote.Value.String(),
			IsProvisional:   &creditProvisional,
		},
		UpdatedAt: r.UpdatedAt,
	}
	if r.Receipt != nil {
		doc.Receipt = &dto.ReceiptDocument{
			Authorisation:  r.Receipt.Authorisation.Token,
			ReceiptedValue: r.Receipt.ReceiptedValue.String(),
		}
	}
	if r.Refund != nil {
		doc.Refund = &dto.RefundDocument{Authorisation: r.Refund.Authorisation.Token}
	}
	return doc
}

// ToDomainTransactionRecord converts a stored document to a domain TransactionRecord.
// Every required field must be present.
func ToDomainTransactionRecord(m dto.TransactionRecordDocument) (domain.TransactionRecord, error) {
	const doc = "transaction record"
	if err := requireString(doc, "uid", m.UID); err != nil {
		return domain.TransactionRecord{}, err
	}
	state := domain.TransactionState(m.State)
	if !state.IsValid() {
		return domain.TransactionRecord{}, fmt.Errorf("%w: %s %s has invalid state %q", apperrors.ErrMalformed, doc, m.UID, m.State)
	}
	if m.DebitNote == nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: %s %s is missing its debit note", apperrors.ErrMalformed, doc, m.UID)
	}
	if m.CreditNote == nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: %s %s is missing its credit note", apperrors.ErrMalformed, doc, m.UID)
	}
	debit, err := toDomainDebitNote(*m.DebitNote)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	credit, err := toDomainCreditNote(*m.CreditNote)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	if _, err := domain.NewPairedNote(debit, credit); err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: %s %s: %v", apperrors.ErrMalformed, doc, m.UID, err)
	}

	rec := domain.TransactionRecord{
		UID:        m.UID,
		DebitNote:  debit,
		CreditNote: credit,
		State:      state,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Receipt != nil {
		value, err := requireDecimal("receipt", "receipted_value", m.Receipt.ReceiptedValue)
		if err != nil {
			return domain.TransactionRecord{}, err
		}
		rec.Receipt = &domain.Receipt{
			CreditNote:     credit,
			Authorisation:  domain.Authorisation{Token: m.Receipt.Authorisation},
			ReceiptedValue: value,
		}
	}
	if m.Refund != nil {
		rec.Refund = &domain.Refund{
			CreditNote:    credit,
			Authorisation: domain.Authorisation{Token: m.Refund.Authorisation},
		}
	}
	return rec, nil
}

func toDomainDebitNote(m dto.DebitNoteDocument) (domain.DebitNote, error) {
	const doc = "debit note"
	if err := requireString(doc, "uid", m.UID); err != nil {
		return domain.DebitNote{}, err
	}
	if err := requireString(doc, "account_uid", m.AccountUID); err != nil {
		return domain.DebitNote{}, err
	}
	value, err := requireDecimal(doc, "value", m.Value)
	if err != nil {
		return domain.DebitNote{}, err
	}
	provisional, err := requireBool(doc, "is_provisional", m.IsProvisional)
	if err != nil {
		return domain.DebitNote{}, err
	}
	return domain.DebitNote{
		UID:           m.UID,
		Timestamp:     m.Timestamp,
		AccountUID:    m.AccountUID,
		Transaction:   domain.Transaction{Value: value, Description: m.Description},
		Authorisation: domain.Authorisation{Token: m.Authorisation},
		IsProvisional: provisional,
	}, nil
}

func toDomainCreditNote(m dto.CreditNoteDocument) (domain.CreditNote, error) {
	const doc = "credit note"
	for field, v := range map[string]string{
		"uid":               m.UID,
		"debit_note_uid":    m.DebitNoteUID,
		"account_uid":       m.AccountUID,
		"debit_account_uid": m.DebitAccountUID,
	} {
		if err := requireString(doc, field, v); err != nil {
			return domain.CreditNote{}, err
		}
	}
	value, err := requireDecimal(doc, "value", m.Value)
	if err != nil {
		return domain.CreditNote{}, err
	}
	provisional, err := requireBool(doc, "is_provisional", m.IsProvisional)
	if err != nil {
		return domain.CreditNote{}, err
	}
	return domain.CreditNote{
		UID:             m.UID,
		DebitNoteUID:    m.DebitNoteUID,
		Timestamp:       m.Timestamp,
		AccountUID:      m.AccountUID,
		DebitAccountUID: m.DebitAccountUID,
		Value:           value,
		IsProvisional:   provisional,
	}, nil
}
