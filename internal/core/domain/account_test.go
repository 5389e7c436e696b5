package domain_test

import (
	"testing"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(code domain.LineItemCode, value string, receipted ...string) domain.LineItem {
	li := domain.LineItem{Code: code, Value: domain.MustBoundedDecimal(value)}
	if len(receipted) > 0 {
		li.ReceiptedValue = domain.MustBoundedDecimal(receipted[0])
	}
	return li
}

func TestBalanceState_Apply(t *testing.T) {
	tests := []struct {
		name       string
		item       domain.LineItem
		balance    string
		liability  string
		receivable string
		spent      string
	}{
		{"credit", item(domain.CodeCredit, "10"), "10", "0", "0", "0"},
		{"debit", item(domain.CodeDebit, "10"), "-10", "0", "0", "10"},
		{"current liability", item(domain.CodeCurrentLiability, "10"), "0", "10", "0", "10"},
		{"receivable", item(domain.CodeReceivable, "10"), "0", "0", "10", "0"},
		{"received receipt", item(domain.CodeReceivedReceipt, "10", "8"), "-8", "-10", "0", "0"},
		{"sent receipt", item(domain.CodeSentReceipt, "10", "8"), "8", "0", "-10", "0"},
		{"received refund", item(domain.CodeReceivedRefund, "10"), "10", "0", "0", "0"},
		{"sent refund", item(domain.CodeSentRefund, "10"), "-10", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s domain.BalanceState
			require.NoError(t, s.Apply(tt.item))
			assert.Equal(t, domain.MustBoundedDecimal(tt.balance).String(), s.Balance.String())
			assert.Equal(t, domain.MustBoundedDecimal(tt.liability).String(), s.Liability.String())
			assert.Equal(t, domain.MustBoundedDecimal(tt.receivable).String(), s.Receivable.String())
			assert.Equal(t, domain.MustBoundedDecimal(tt.spent).String(), s.SpentToday.String())
		})
	}

	var s domain.BalanceState
	assert.Error(t, s.Apply(domain.LineItem{Code: "ZZ"}))
}

func TestAvailableBalance(t *testing.T) {
	state := domain.BalanceState{
		BalanceSnapshot: domain.BalanceSnapshot{
			Balance:   domain.MustBoundedDecimal("50"),
			Liability: domain.MustBoundedDecimal("20"),
		},
		SpentToday: domain.MustBoundedDecimal("30"),
	}
	account := domain.Account{OverdraftLimit: domain.MustBoundedDecimal("100")}

	available, err := domain.AvailableBalance(state, account)
	require.NoError(t, err)
	assert.True(t, domain.MustBoundedDecimal("130").Equal(available))

	account.MaximumDailyLimit = domain.MustBoundedDecimal("40")
	available, err = domain.AvailableBalance(state, account)
	require.NoError(t, err)
	assert.True(t, domain.MustBoundedDecimal("10").Equal(available))
}

func TestBalanceState_IsBeyondOverdraft(t *testing.T) {
	state := domain.BalanceState{BalanceSnapshot: domain.BalanceSnapshot{
		Balance:   domain.MustBoundedDecimal("-60"),
		Liability: domain.MustBoundedDecimal("40"),
	}}

	beyond, err := state.IsBeyondOverdraft(domain.MustBoundedDecimal("100"))
	require.NoError(t, err)
	assert.False(t, beyond, "exactly at the limit")

	beyond, err = state.IsBeyondOverdraft(domain.MustBoundedDecimal("99.999999"))
	require.NoError(t, err)
	assert.True(t, beyond)
}
