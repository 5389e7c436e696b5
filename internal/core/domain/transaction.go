package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
)

// MaximumTransactionValue is the largest value a single transaction may carry.
// Larger transfers are split with SplitTransaction.
var MaximumTransactionValue = MustBoundedDecimal("999999.999999")

// Transaction is a value transfer request: a non-negative value and a
// description, which is mandatory when the value is positive.
type Transaction struct {
	Value       BoundedDecimal `json:"value"`
	Description string         `json:"description"`
}

// NewTransaction validates and builds a Transaction.
func NewTransaction(value BoundedDecimal, description string) (Transaction, error) {
	t := Transaction{Value: value, Description: strings.TrimSpace(description)}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Validate checks the value bounds and the description rule.
func (t Transaction) Validate() error {
	if t.Value.IsNegative() {
		return fmt.Errorf("%w: transaction value cannot be negative (%s)", apperrors.ErrTransaction, t.Value)
	}
	if t.Value.GreaterThan(MaximumTransactionValue) {
		return fmt.Errorf("%w: transaction value %s exceeds the maximum %s, split it first", apperrors.ErrTransaction, t.Value, MaximumTransactionValue)
	}
	if t.Value.IsPositive() && t.Description == "" {
		return fmt.Errorf("%w: a description is required for a transaction of %s", apperrors.ErrTransaction, t.Value)
	}
	return nil
}

// IsZero reports whether the transaction moves no value.
func (t Transaction) IsZero() bool { return t.Value.IsZero() }

// Equal compares value and description.
func (t Transaction) Equal(o Transaction) bool {
	return t.Value.Equal(o.Value) && t.Description == o.Description
}

// Compare orders transactions by value.
func (t Transaction) Compare(o Transaction) int {
	return t.Value.Cmp(o.Value)
}

// SplitTransaction breaks value into transactions no larger than the maximum.
// The parts sum exactly to value.
func SplitTransaction(value BoundedDecimal, description string) ([]Transaction, error) {
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: cannot split a negative value (%s)", apperrors.ErrTransaction, value)
	}
	if !value.GreaterThan(MaximumTransactionValue) {
		t, err := NewTransaction(value, description)
		if err != nil {
			return nil, err
		}
		return []Transaction{t}, nil
	}

	var parts []Transaction
	remaining := value
	for remaining.GreaterThan(MaximumTransactionValue) {
		t, err := NewTransaction(MaximumTransactionValue, description)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
		if remaining, err = remaining.Sub(MaximumTransactionValue); err != nil {
			return nil, err
		}
	}
	if remaining.IsPositive() {
		t, err := NewTransaction(remaining, description)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
	}
	return parts, nil
}
