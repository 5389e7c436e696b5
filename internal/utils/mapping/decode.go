package mapping

import (
	"fmt"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// requireString fails when a required document field is empty.
func requireString(doc, field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is missing required field %q", apperrors.ErrMalformed, doc, field)
	}
	return nil
}

// requireDecimal parses a required decimal document field.
func requireDecimal(doc, field, v string) (domain.BoundedDecimal, error) {
	if err := requireString(doc, field, v); err != nil {
		return domain.Zero, err
	}
	d, err := domain.ParseBoundedDecimal(v)
	if err != nil {
		return domain.Zero, fmt.Errorf("%w: %s field %q: %v", apperrors.ErrMalformed, doc, field, err)
	}
	return d, nil
}

// requireBool dereferences a required boolean document field.
func requireBool(doc, field string, v *bool) (bool, error) {
	if v == nil {
		return false, fmt.Errorf("%w: %s is missing required field %q", apperrors.ErrMalformed, doc, field)
	}
	return *v, nil
}
