package mapping

import (
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/SscSPs/acquire_ledger/internal/dto"
)

// ToAccountDocument converts a domain Account to its stored document
func ToAccountDocument(d domain.Account) dto.AccountDocument {
	return dto.AccountDocument{
		UID:               d.UID,
		Name:              d.Name,
		Description:       d.Description,
		OverdraftLimit:    d.OverdraftLimit.String(),
		MaximumDailyLimit: d.MaximumDailyLimit.String(),
		CreatedAt:         d.CreatedAt,
		CreatedBy:         d.CreatedBy,
		LastUpdatedAt:     d.LastUpdatedAt,
		LastUpdatedBy:     d.LastUpdatedBy,
	}
}

// ToDomainAccount converts a stored document to a domain Account
func ToDomainAccount(m dto.AccountDocument) (domain.Account, error) {
	const doc = "account"
	if err := requireString(doc, "uid", m.UID); err != nil {
		return domain.Account{}, err
	}
	if err := requireString(doc, "name", m.Name); err != nil {
		return domain.Account{}, err
	}
	overdraft, err := requireDecimal(doc, "overdraft_limit", m.OverdraftLimit)
	if err != nil {
		return domain.Account{}, err
	}
	daily, err := requireDecimal(doc, "maximum_daily_limit", m.MaximumDailyLimit)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{
		UID:               m.UID,
		Name:              m.Name,
		Description:       m.Description,
		OverdraftLimit:    overdraft,
		MaximumDailyLimit: daily,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}

// ToSnapshotDocument converts a balance snapshot to its stored document
func ToSnapshotDocument(s domain.BalanceSnapshot) dto.SnapshotDocument {
	return dto.SnapshotDocument{
		Balance:    s.Balance.String(),
		Liability:  s.Liability.String(),
		Receivable: s.Receivable.String(),
	}
}

// ToDomainSnapshot converts a stored document to a balance snapshot
func ToDomainSnapshot(m dto.SnapshotDocument) (domain.BalanceSnapshot, error) {
	const doc = "balance snapshot"
	balance, err := requireDecimal(doc, "balance", m.Balance)
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}
	liability, err := requireDecimal(doc, "liability", m.Liability)
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}
	receivable, err := requireDecimal(doc, "receivable", m.Receivable)
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}
	return domain.BalanceSnapshot{Balance: balance, Liability: liability, Receivable: receivable}, nil
}
