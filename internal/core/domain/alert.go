package domain

import "time"

// AlertKind classifies an operator alert.
type AlertKind string

const (
	// AlertUnbalancedLedger means a compensation failed and the ledger may
	// not sum to zero until someone intervenes.
	AlertUnbalancedLedger AlertKind = "unbalanced_ledger"
)

// LedgerAlert is raised when the ledger needs manual attention.
type LedgerAlert struct {
	Kind           AlertKind `json:"kind"`
	TransactionUID string    `json:"transactionUID,omitempty"`
	AccountUIDs    []string  `json:"accountUIDs"`
	Cause          string    `json:"cause"`
	Compensations  []string  `json:"compensations,omitempty"` // Failed compensation errors
	RaisedAt       time.Time `json:"raisedAt"`
}
