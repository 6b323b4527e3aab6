package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"gorm.io/gorm"
)

// PromotionQuote is the advisory result of validating a code against an
// order. Its success does not guarantee redemption will succeed later.
type PromotionQuote struct {
	Promotion      models.Promotion `json:"promotion"`
	DiscountAmount float64          `json:"discount_amount"`
}

// NormalizePromotionCode canonicalizes a user-entered code. Codes are stored
// upper-case, so lookups compare canonical forms.
func NormalizePromotionCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetActivePromotionByCode loads an ACTIVE promotion by canonical code.
// Plain read, no locking.
func GetActivePromotionByCode(code string) (*models.Promotion, error) {
	var promotion models.Promotion
	err := config.DB.
		Where("code = ? AND status = ?", NormalizePromotionCode(code), models.PromotionStatusActive).
		First(&promotion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPromoError(PromoErrNotFound, "This promotion code does not exist or is not active")
		}
		return nil, WrapError(err, "failed to look up promotion")
	}
	return &promotion, nil
}

// CountCustomerRedemptions counts ledger entries for a customer on one
// promotion. Plain read; the authoritative re-count happens under the row
// lock during redemption.
func CountCustomerRedemptions(promotionID uint, customerID uint) (int, error) {
	var count int64
	err := config.DB.Model(&models.PromotionUsage{}).
		Where("promotion_id = ? AND customer_id = ?", promotionID, customerID).
		Count(&count).Error
	if err != nil {
		return 0, WrapError(err, "failed to count customer redemptions")
	}
	return int(count), nil
}

// ValidatePromotionCode runs the advisory eligibility checks for a code
// against an order total and optional customer, short-circuiting on the
// first failure. A blank code returns (nil, nil): nothing to apply, not an
// error. This path never locks, so it is safe to call on every cart change;
// limit checks here can go stale before redemption.
func ValidatePromotionCode(code string, orderTotal float64, customerID *uint) (*PromotionQuote, error) {
	code = NormalizePromotionCode(code)
	if code == "" {
		return nil, nil
	}

	promotion, err := GetActivePromotionByCode(code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.Before(promotion.StartDate) || now.After(promotion.EndDate) {
		return nil, NewPromoError(PromoErrExpired, "This promotion is not currently running")
	}

	// Advisory only; the redemption path re-checks under lock
	if promotion.UsageLimit > 0 && promotion.UsageCount >= promotion.UsageLimit {
		return nil, NewPromoError(PromoErrLimitExceeded, "This promotion code is no longer available")
	}

	if orderTotal < promotion.MinPurchaseAmount {
		return nil, NewPromoError(PromoErrBelowMinimumPurchase,
			"Order total is below the minimum purchase amount for this promotion")
	}

	if customerID != nil {
		used, err := CountCustomerRedemptions(promotion.ID, *customerID)
		if err != nil {
			return nil, err
		}
		if used >= promotion.UsageLimitPerUser {
			return nil, NewPromoError(PromoErrPerCustomerLimitExceeded,
				"You have already used this promotion the maximum number of times")
		}
	}

	discount, err := CalculateDiscount(*promotion, orderTotal)
	if err != nil {
		return nil, err
	}

	return &PromotionQuote{Promotion: *promotion, DiscountAmount: discount}, nil
}
