package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func provisionalNote(uid, value string) domain.CreditNote {
	return domain.CreditNote{
		UID:             uid + "-credit",
		DebitNoteUID:    uid,
		AccountUID:      "b",
		DebitAccountUID: "a",
		Value:           domain.MustBoundedDecimal(value),
		IsProvisional:   true,
	}
}

func TestNewReceipt(t *testing.T) {
	note := provisionalNote("t1", "100")
	r, err := domain.NewReceipt(note, domain.Authorisation{}, domain.MustBoundedDecimal("80"))
	require.NoError(t, err)
	assert.Equal(t, "t1", r.TransactionUID())
	assert.True(t, note.Value.Equal(r.Value()))

	_, err = domain.NewReceipt(note, domain.Authorisation{}, domain.MustBoundedDecimal("100.000001"))
	assert.ErrorIs(t, err, apperrors.ErrTransaction)

	_, err = domain.NewReceipt(note, domain.Authorisation{}, domain.MustBoundedDecimal("-1"))
	assert.ErrorIs(t, err, apperrors.ErrTransaction)

	note.IsProvisional = false
	_, err = domain.NewReceipt(note, domain.Authorisation{}, domain.MustBoundedDecimal("80"))
	assert.ErrorIs(t, err, apperrors.ErrTransaction)
}

func TestCreateReceipts_DrainsShortfallInOrder(t *testing.T) {
	notes := []domain.CreditNote{provisionalNote("t1", "30"), provisionalNote("t2", "50"), provisionalNote("t3", "20")}

	receipts, err := domain.CreateReceipts(notes, domain.Authorisation{}, domain.MustBoundedDecimal("60"))
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.True(t, domain.Zero.Equal(receipts[0].ReceiptedValue))
	assert.True(t, domain.MustBoundedDecimal("40").Equal(receipts[1].ReceiptedValue))
	assert.True(t, domain.MustBoundedDecimal("20").Equal(receipts[2].ReceiptedValue))

	_, err = domain.CreateReceipts(notes, domain.Authorisation{}, domain.MustBoundedDecimal("100.5"))
	assert.ErrorIs(t, err, apperrors.ErrTransaction)
}

func TestCreateRefunds(t *testing.T) {
	direct := provisionalNote("t1", "10")
	direct.IsProvisional = false
	refunds, err := domain.CreateRefunds([]domain.CreditNote{direct}, domain.Authorisation{})
	require.NoError(t, err)
	assert.Len(t, refunds, 1)
	assert.Equal(t, "t1", refunds[0].TransactionUID())

	_, err = domain.CreateRefunds([]domain.CreditNote{direct, provisionalNote("t2", "5")}, domain.Authorisation{})
	assert.ErrorIs(t, err, apperrors.ErrTransaction)
}

func TestTransactionRecord_Matching(t *testing.T) {
	debit := domain.DebitNote{
		UID:         "t1",
		AccountUID:  "a",
		Transaction: domain.Transaction{Value: domain.MustBoundedDecimal("10"), Description: "x"},
	}
	credit := domain.CreditNote{UID: "c1", DebitNoteUID: "t1", AccountUID: "b", DebitAccountUID: "a", Value: debit.Value()}
	pair, err := domain.NewPairedNote(debit, credit)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	record := domain.NewTransactionRecord(pair, now)
	assert.Equal(t, domain.StateDirect, record.State)
	assert.Equal(t, "t1", record.UID)

	refund, err := domain.NewRefund(credit, domain.Authorisation{})
	require.NoError(t, err)
	assert.NoError(t, record.AssertMatchingRefund(refund))

	other := credit
	other.AccountUID = "c"
	refund, err = domain.NewRefund(other, domain.Authorisation{})
	require.NoError(t, err)
	assert.ErrorIs(t, record.AssertMatchingRefund(refund), apperrors.ErrUnmatchedRefund)

	next := record.WithState(domain.StateRefunding, now.Add(time.Second))
	assert.Equal(t, domain.StateDirect, record.State, "records are copied, not mutated")
	assert.Equal(t, "REFUNDING", next.State.String())
	assert.False(t, next.State.IsTerminal())
	assert.True(t, domain.StateRefunded.IsTerminal())
}

func TestCreatePairedNotes_Misaligned(t *testing.T) {
	debit := domain.DebitNote{UID: "t1", AccountUID: "a", Transaction: domain.Transaction{Value: domain.MustBoundedDecimal("10"), Description: "x"}}
	credit := domain.CreditNote{DebitNoteUID: "t2", AccountUID: "b", DebitAccountUID: "a", Value: debit.Value()}

	_, err := domain.CreatePairedNotes([]domain.DebitNote{debit}, []domain.CreditNote{credit})
	assert.ErrorIs(t, err, apperrors.ErrTransaction)

	_, err = domain.CreatePairedNotes([]domain.DebitNote{debit}, nil)
	assert.ErrorIs(t, err, apperrors.ErrTransaction)
}
