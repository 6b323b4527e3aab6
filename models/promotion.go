package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount types supported by promotions
const (
	DiscountTypePercentage   = "PERCENTAGE"
	DiscountTypeFixedAmount  = "FIXED_AMOUNT"
	DiscountTypeFreeShipping = "FREE_SHIPPING"
	DiscountTypeBuyXGetY     = "BUY_X_GET_Y"
)

// Promotion statuses
const (
	PromotionStatusActive   = "ACTIVE"
	PromotionStatusInactive = "INACTIVE"
)

// Applicable scopes; scope filtering of cart items happens in the catalog
// service, the engine only stores the rule
const (
	ScopeAll      = "ALL"
	ScopeProduct  = "PRODUCT"
	ScopeCategory = "CATEGORY"
	ScopeBrand    = "BRAND"
)

// Promotion represents a capacity-limited discount rule identified by a code.
// Codes are stored canonicalized to upper-case. UsageCount is authoritative
// only when read under the row lock taken during redemption.
type Promotion struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Code              string         `gorm:"uniqueIndex:idx_promotions_code;not null" json:"code"`
	DiscountType      string         `json:"discount_type"`
	DiscountValue     float64        `json:"discount_value"`
	MinPurchaseAmount float64        `json:"min_purchase_amount"`
	MaxDiscountAmount float64        `json:"max_discount_amount"` // 0 means no cap
	ApplicableScope   string         `gorm:"default:ALL" json:"applicable_scope"`
	ScopeRefs         string         `json:"scope_refs,omitempty"` // comma-separated ids, opaque here
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	UsageLimit        int            `json:"usage_limit"` // 0 means unlimited
	UsageCount        int            `json:"usage_count"`
	UsageLimitPerUser int            `gorm:"default:1" json:"usage_limit_per_user"`
	Status            string         `gorm:"default:ACTIVE" json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// PromotionUsage is an immutable ledger entry, one per successful redemption.
// The unique index on (promotion_id, order_id) makes redemption idempotent
// per order: a second redeem for the same order finds this row instead of
// consuming more capacity.
type PromotionUsage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PromotionID    uint      `gorm:"index;uniqueIndex:idx_promotion_usages_promo_order" json:"promotion_id"`
	OrderID        uint      `gorm:"uniqueIndex:idx_promotion_usages_promo_order" json:"order_id"`
	CustomerID     *uint     `gorm:"index" json:"customer_id"` // nil for guest checkout
	DiscountAmount float64   `json:"discount_amount"`
	UsedAt         time.Time `json:"used_at"`
}
