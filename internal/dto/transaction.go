package dto

import "github.com/SscSPs/acquire_ledger/internal/core/domain"

// TransactionRequest is one transfer in a perform request.
type TransactionRequest struct {
	Value       string `json:"value" binding:"required,decimal6"`
	Description string `json:"description"`
}

// PerformRequest moves value from one account to another.
type PerformRequest struct {
	DebitAccountUID  string               `json:"debitAccountUID" binding:"required"`
	CreditAccountUID string               `json:"creditAccountUID" binding:"required,nefield=DebitAccountUID"`
	Transactions     []TransactionRequest `json:"transactions" binding:"required,min=1,dive"`
	IsProvisional    bool                 `json:"isProvisional"`
	Authorisation    string               `json:"authorisation" binding:"required"`
}

// ReceiptRequest settles a provisional transaction.
type ReceiptRequest struct {
	CreditNote     domain.CreditNote `json:"creditNote" binding:"required"`
	ReceiptedValue string            `json:"receiptedValue" binding:"required,decimal6"`
	Authorisation  string            `json:"authorisation" binding:"required"`
}

// RefundRequest reverses a direct transaction.
type RefundRequest struct {
	CreditNote    domain.CreditNote `json:"creditNote" binding:"required"`
	Authorisation string            `json:"authorisation" binding:"required"`
}

// PerformResponse lists the records written by a perform request.
type PerformResponse struct {
	Records []domain.TransactionRecord `json:"records"`
}

// IssueAuthorisationRequest asks for a signed authorisation over a resource.
type IssueAuthorisationRequest struct {
	AccountUID string `json:"accountUID" binding:"required"`
}

// AuthorisationResponse carries a signed authorisation token.
type AuthorisationResponse struct {
	Authorisation string `json:"authorisation"`
	Resource      string `json:"resource"`
}
