package domain

import (
	"fmt"
	"time"
)

// Account is the persisted description of a ledger account. Balances are
// never stored here; they are derived from snapshots and line items.
type Account struct {
	UID               string         `json:"uid"`               // Immutable, assigned at creation
	Name              string         `json:"name"`              // Immutable
	Description       string         `json:"description"`       // Immutable
	OverdraftLimit    BoundedDecimal `json:"overdraftLimit"`    // How far below zero the balance may go
	MaximumDailyLimit BoundedDecimal `json:"maximumDailyLimit"` // Zero means no daily limit
	AuditFields
}

// HasDailyLimit reports whether a maximum daily spend is configured.
func (a Account) HasDailyLimit() bool { return a.MaximumDailyLimit.IsPositive() }

// BalanceSnapshot is the state of an account at the start of a day.
type BalanceSnapshot struct {
	Balance    BoundedDecimal `json:"balance"`
	Liability  BoundedDecimal `json:"liability"`
	Receivable BoundedDecimal `json:"receivable"`
}

// BalanceState accumulates line items on top of a snapshot.
type BalanceState struct {
	BalanceSnapshot
	SpentToday BoundedDecimal `json:"spentToday"`
}

// Apply folds one line item into the state.
func (s *BalanceState) Apply(item LineItem) error {
	var err error
	switch item.Code {
	case CodeCredit, CodeReceivedRefund:
		s.Balance, err = s.Balance.Add(item.Value)
	case CodeDebit:
		if s.Balance, err = s.Balance.Sub(item.Value); err == nil {
			s.SpentToday, err = s.SpentToday.Add(item.Value)
		}
	case CodeSentRefund:
		s.Balance, err = s.Balance.Sub(item.Value)
	case CodeCurrentLiability:
		if s.Liability, err = s.Liability.Add(item.Value); err == nil {
			s.SpentToday, err = s.SpentToday.Add(item.Value)
		}
	case CodeReceivable:
		s.Receivable, err = s.Receivable.Add(item.Value)
	case CodeReceivedReceipt:
		if s.Balance, err = s.Balance.Sub(item.ReceiptedValue); err == nil {
			s.Liability, err = s.Liability.Sub(item.Value)
		}
	case CodeSentReceipt:
		if s.Balance, err = s.Balance.Add(item.ReceiptedValue); err == nil {
			s.Receivable, err = s.Receivable.Sub(item.Value)
		}
	default:
		return fmt.Errorf("unknown line item code %q", item.Code)
	}
	return err
}

// IsBeyondOverdraft reports whether balance minus liability has dropped
// below the negative overdraft limit.
func (s BalanceState) IsBeyondOverdraft(overdraft BoundedDecimal) (bool, error) {
	net, err := s.Balance.Sub(s.Liability)
	if err != nil {
		return false, err
	}
	floor, err := overdraft.Neg()
	if err != nil {
		return false, err
	}
	return net.LessThan(floor), nil
}

// BalanceStatus is the full derived view of an account at a moment in time.
type BalanceStatus struct {
	AccountUID        string         `json:"accountUID"`
	Balance           BoundedDecimal `json:"balance"`
	Liability         BoundedDecimal `json:"liability"`
	Receivable        BoundedDecimal `json:"receivable"`
	SpentToday        BoundedDecimal `json:"spentToday"`
	OverdraftLimit    BoundedDecimal `json:"overdraftLimit"`
	MaximumDailyLimit BoundedDecimal `json:"maximumDailyLimit"`
	Available         BoundedDecimal `json:"available"`
	AsOf              time.Time      `json:"asOf"`
}

// AvailableBalance is balance - liability + overdraft, further capped by
// the remaining daily allowance when a daily limit is set.
func AvailableBalance(state BalanceState, account Account) (BoundedDecimal, error) {
	available, err := state.Balance.Sub(state.Liability)
	if err != nil {
		return Zero, err
	}
	if available, err = available.Add(account.OverdraftLimit); err != nil {
		return Zero, err
	}
	if account.HasDailyLimit() {
		remaining, err := account.MaximumDailyLimit.Sub(state.SpentToday)
		if err != nil {
			return Zero, err
		}
		available = available.Min(remaining)
	}
	return available, nil
}
