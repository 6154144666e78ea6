package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Redemption kinds
const (
	RedemptionKindCash = "CASH"
	RedemptionKindGold = "GOLD"
)

// Redemption statuses
const (
	RedemptionPending   = "PENDING"
	RedemptionApproved  = "APPROVED"
	RedemptionRejected  = "REJECTED"
	RedemptionCompleted = "COMPLETED"
)

// redemptionTransitions is the explicit state machine for redemption
// requests. REJECTED and COMPLETED are terminal: no outgoing edges.
var redemptionTransitions = map[string][]string{
	RedemptionPending:  {RedemptionApproved, RedemptionRejected, RedemptionCompleted},
	RedemptionApproved: {RedemptionCompleted, RedemptionRejected},
}

// ValidRedemptionStatus reports whether s names a known status.
func ValidRedemptionStatus(s string) bool {
	switch s {
	case RedemptionPending, RedemptionApproved, RedemptionRejected, RedemptionCompleted:
		return true
	}
	return false
}

// RedemptionTerminal reports whether s is a terminal status.
func RedemptionTerminal(s string) bool {
	return s == RedemptionRejected || s == RedemptionCompleted
}

// CanTransitionRedemption reports whether from -> to is a legal edge.
func CanTransitionRedemption(from, to string) bool {
	for _, next := range redemptionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RedemptionRequest is a user request to convert custodial gold into a
// cash payout or physical gold delivery.
type RedemptionRequest struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"index;not null"`
	Wallet    string          `gorm:"not null"`
	Kind      string          `gorm:"not null;default:'CASH'"`
	Grams     decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	FeeBps    int             `gorm:"not null"`
	FeeAmount decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	// MinimumGrams records the physical-gold bar size in force when a
	// GOLD request was created. Nil for cash requests.
	MinimumGrams *decimal.Decimal `gorm:"type:numeric(20,6)"`
	// Payout is the cash amount after fees. Nil for GOLD requests;
	// physical fulfillment happens out of band.
	Payout    *decimal.Decimal `gorm:"type:numeric(20,6)"`
	Status    string           `gorm:"not null;default:'PENDING';index"`
	Detail    JSON             `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
