package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account status values
const (
	AccountStatusPending  = "pending"
	AccountStatusApproved = "approved"
	AccountStatusRejected = "rejected"
)

// DefaultReason is stored when a registration request carries no reason
const DefaultReason = "No reason provided"

// Account represents an EA trading-account registration record.
// The logical key is the (ea_type, account) pair; account numbers are
// always stored in their string form.
// The collection name is `accounts`
type Account struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UUID    uuid.UUID          `bson:"uuid" json:"uuid"`
	EAType  string             `bson:"ea_type" json:"ea_type"`
	Account string             `bson:"account" json:"account"`
	Broker  string             `bson:"broker" json:"broker"`
	Name    string             `bson:"name" json:"name"`
	Phone   string             `bson:"phone" json:"phone"`
	Reason  string             `bson:"reason" json:"reason"`

	Status  string `bson:"status" json:"status"`
	Enabled bool   `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (Account) CollectionName() string {
	return "accounts"
}

// IsValidAccountStatus reports whether s is one of the known status values
func IsValidAccountStatus(s string) bool {
	switch s {
	case AccountStatusPending, AccountStatusApproved, AccountStatusRejected:
		return true
	}
	return false
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	UUID          *uuid.UUID
	EAType        *string
	Account       *string
	Status        *string
	Enabled       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
