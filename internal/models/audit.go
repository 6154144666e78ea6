package models

import "time"

// Audit actions
const (
	AuditActionBuyMint          = "token.buy_mint"
	AuditActionSellBurn         = "token.sell_burn"
	AuditActionChainCallFailed  = "token.chain_call_failed"
	AuditActionOffchainPurchase = "token.offchain_purchase"
	AuditActionAdminCredit      = "balance.admin_credit"
	AuditActionTopUp            = "balance.topup"
	AuditActionSetManualPrice   = "price.set_manual"
	AuditActionRedemptionCreate = "redemption.create"
	AuditActionRedemptionStatus = "redemption.transition"
)

// AuditEntry records one administrative or value-moving action.
// Entries are append-only and never mutated or deleted.
type AuditEntry struct {
	ID        uint   `gorm:"primarykey"`
	Operator  string `gorm:"index;not null"` // wallet or system identity performing the action
	Action    string `gorm:"index;not null"`
	Target    string `gorm:"index"` // wallet or record id acted upon, if any
	Detail    JSON   `gorm:"type:jsonb"`
	CreatedAt time.Time
}
