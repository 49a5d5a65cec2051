// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// AccountNumber accepts a trading-account number supplied either as a
// JSON string or as a JSON number. It always normalizes to the string
// representation used as part of the storage key.
type AccountNumber string

func (a *AccountNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AccountNumber(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("account must be a string or a number")
	}
	*a = AccountNumber(n.String())
	return nil
}

func (a AccountNumber) String() string {
	return string(a)
}

// RegisterAccountRequest represents the account registration form data
type RegisterAccountRequest struct {
	EAType  string        `json:"ea_type" validate:"required,max=64"`
	Account AccountNumber `json:"account" validate:"required,max=64"`
	Broker  string        `json:"broker" validate:"required,max=255"`
	Name    string        `json:"name" validate:"required,max=255"`
	Phone   string        `json:"phone" validate:"required,max=32"`
	Reason  *string       `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RegisterAccountResponse represents the outcome of a registration request
type RegisterAccountResponse struct {
	Message string `json:"message"`
	Account string `json:"account"`
	Status  string `json:"status"`

	// AlreadyRegistered marks the idempotent-conflict outcome; the
	// existing record's state rides along for the conflict body.
	AlreadyRegistered bool `json:"-"`
	Enabled           bool `json:"-"`
}

// RegisterConflictResponse is the body returned when the registration
// key already exists. It echoes the state of the existing record.
type RegisterConflictResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
}

// AccountDTO represents a full account record for API responses
type AccountDTO struct {
	UUID      string    `json:"uuid"`
	EAType    string    `json:"ea_type"`
	Account   string    `json:"account"`
	Broker    string    `json:"broker"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListAccountsResponse represents the accounts listing for one EA type
type ListAccountsResponse struct {
	Accounts []AccountDTO `json:"accounts"`
}

// AccountStatusResponse represents the status projection of one account
type AccountStatusResponse struct {
	Account string `json:"account"`
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
	Broker  string `json:"broker"`
	Name    string `json:"name"`
}

// UpdateAccountStatusRequest represents the status update form data
type UpdateAccountStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=pending approved rejected"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

// UpdateAccountStatusResponse represents the outcome of a status update
type UpdateAccountStatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
}

// DeleteAccountResponse represents the outcome of an account deletion
type DeleteAccountResponse struct {
	Message string `json:"message"`
}
