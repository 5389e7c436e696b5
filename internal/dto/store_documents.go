package dto

import "time"

// Store documents are the persisted JSON schemas. Decimals are strings with
// six fractional digits; pointers mark fields that must be present.

// AccountDocument is stored at accounts/<uid>.
type AccountDocument struct {
	UID               string    `json:"uid"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	OverdraftLimit    string    `json:"overdraft_limit"`
	MaximumDailyLimit string    `json:"maximum_daily_limit"`
	CreatedAt         time.Time `json:"created_at"`
	CreatedBy         string    `json:"created_by"`
	LastUpdatedAt     time.Time `json:"last_updated_at"`
	LastUpdatedBy     string    `json:"last_updated_by"`
}

// SnapshotDocument is stored at accounts/<uid>/balance/<YYYY-MM-DD>.
type SnapshotDocument struct {
	Balance    string `json:"balance"`
	Liability  string `json:"liability"`
	Receivable string `json:"receivable"`
}

// DebitNoteDocument is the persisted form of domain.DebitNote.
type DebitNoteDocument struct {
	UID           string    `json:"uid"`
	Timestamp     time.Time `json:"timestamp"`
	AccountUID    string    `json:"account_uid"`
	Value         string    `json:"value"`
	Description   string    `json:"description"`
	Authorisation string    `json:"authorisation"`
	IsProvisional *bool     `json:"is_provisional"`
}

// CreditNoteDocument is the persisted form of domain.CreditNote.
type CreditNoteDocument struct {
	UID             string    `json:"uid"`
	DebitNoteUID    string    `json:"debit_note_uid"`
	Timestamp       time.Time `json:"timestamp"`
	AccountUID      string    `json:"account_uid"`
	DebitAccountUID string    `json:"debit_account_uid"`
	Value           string    `json:"value"`
	IsProvisional   *bool     `json:"is_provisional"`
}

// ReceiptDocument holds the receipt parts not already on the record.
type ReceiptDocument struct {
	Authorisation  string `json:"authorisation"`
	ReceiptedValue string `json:"receipted_value"`
}

// RefundDocument holds the refund parts not already on the record.
type RefundDocument struct {
	Authorisation string `json:"authorisation"`
}

// TransactionRecordDocument is stored at transactions/<uid>.
type TransactionRecordDocument struct {
	UID        string              `json:"uid"`
	State      string              `json:"state"`
	DebitNote  *DebitNoteDocument  `json:"debit_note"`
	CreditNote *CreditNoteDocument `json:"credit_note"`
	Receipt    *ReceiptDocument    `json:"receipt,omitempty"`
	Refund     *RefundDocument     `json:"refund,omitempty"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// AccountGroupEntryDocument is stored at account_groups/<group>/<encoded name>.
type AccountGroupEntryDocument struct {
	Name       string `json:"name"`
	AccountUID string `json:"account_uid"`
}
