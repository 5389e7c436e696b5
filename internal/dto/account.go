package dto

import (
	"time"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`                                   // Optional
	OverdraftLimit    string `json:"overdraftLimit" binding:"omitempty,decimal6"`    // Optional, defaults to zero
	MaximumDailyLimit string `json:"maximumDailyLimit" binding:"omitempty,decimal6"` // Optional, zero means unlimited
}

// SetLimitRequest sets an overdraft or daily limit.
type SetLimitRequest struct {
	Limit string `json:"limit" binding:"required,decimal6"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	UID               string    `json:"uid"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	OverdraftLimit    string    `json:"overdraftLimit"`
	MaximumDailyLimit string    `json:"maximumDailyLimit"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"`
	LastUpdatedAt     time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy     string    `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc domain.Account) AccountResponse {
	return AccountResponse{
		UID:               acc.UID,
		Name:              acc.Name,
		Description:       acc.Description,
		OverdraftLimit:    acc.OverdraftLimit.String(),
		MaximumDailyLimit: acc.MaximumDailyLimit.String(),
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	Account AccountResponse      `json:"account"`
	Status  domain.BalanceStatus `json:"status"`
}

// ListAccountsResponse lists the account names of a group.
type ListAccountsResponse struct {
	Group    string   `json:"group"`
	Accounts []string `json:"accounts"`
}

// ListLineItemsParams defines query parameters for an account statement.
type ListLineItemsParams struct {
	Day       string  `form:"day"` // YYYY-MM-DD, defaults to today
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// LineItemResponse is one statement line.
type LineItemResponse struct {
	UID            string              `json:"uid"`
	Code           domain.LineItemCode `json:"code"`
	Value          string              `json:"value"`
	ReceiptedValue string              `json:"receiptedValue,omitempty"`
	Timestamp      time.Time           `json:"timestamp"`
}

// ListLineItemsResponse is one page of an account statement.
type ListLineItemsResponse struct {
	Items     []LineItemResponse `json:"items"`
	NextToken *string            `json:"nextToken,omitempty"`
}
