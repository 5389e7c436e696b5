package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w: account x", apperrors.ErrNotFound), http.StatusNotFound},
		{"permission", apperrors.ErrPermission, http.StatusForbidden},
		{"validation", apperrors.ErrValidation, http.StatusBadRequest},
		{"transaction", apperrors.ErrTransaction, http.StatusBadRequest},
		{"insufficient funds", apperrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"ledger state", apperrors.ErrLedger, http.StatusConflict},
		{"unmatched receipt", apperrors.ErrUnmatchedReceipt, http.StatusConflict},
		{"mutex timeout", apperrors.ErrMutexTimeout, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{
			"unbalanced wins over its cause",
			&apperrors.UnbalancedLedgerError{Cause: apperrors.ErrInsufficientFunds, Compensations: []error{errors.New("store down")}},
			http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
