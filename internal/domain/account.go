package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
	AccountTypeBusiness AccountType = "business"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeBusiness:
		return true
	}
	return false
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type Address struct {
	Street   string
	City     string
	State    string
	PostCode string
}

// Account is both the credential record and the ledger balance holder.
// Balance is in whole currency units and never negative.
type Account struct {
	ID            uuid.UUID
	UserID        string
	PasswordHash  string
	Role          Role
	Title         string
	FirstName     string
	LastName      string
	DOB           time.Time
	Email         string
	Phone         string
	Address       Address
	AccountNumber string
	AccountType   AccountType
	SortCode      string
	Balance       int64
	Version       int64
	OTPSecret     string
	LastLogin     *time.Time
	CreatedAt     time.Time
}
