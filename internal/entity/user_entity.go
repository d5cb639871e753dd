package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id            uuid.UUID
	Email         string
	FullName      string
	Role          UserRole
	Status        UserStatus
	AgeGroup      string
	GuardianEmail *string

	// Spendable balance. Mutated only through the credit ledger;
	// CreditVersion is the CAS counter guarding concurrent spends.
	CreditBalance int
	CreditVersion int
	TrialActive   bool
	TrialEndsAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
