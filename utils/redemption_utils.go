package utils

import (
	"context"
	"errors"
	"time"

	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockWaitTimeout bounds how long a redemption may wait for the promotion
// row lock before the checkout request is told to retry. Variable so tests
// can shorten it.
var lockWaitTimeout = 3 * time.Second

// applyRedemption re-checks the usage limits against a promotion snapshot
// read under the row lock. customerUses is nil for guest checkout. Pure
// function, unit-testable without a database.
func applyRedemption(promotion models.Promotion, customerUses *int) error {
	if promotion.UsageLimit > 0 && promotion.UsageCount >= promotion.UsageLimit {
		return NewPromoError(PromoErrLimitExceeded,
			"This promotion ran out of uses just before your order was placed")
	}
	if customerUses != nil && *customerUses >= promotion.UsageLimitPerUser {
		return NewPromoError(PromoErrPerCustomerLimitExceeded,
			"You redeemed this promotion on another order in the meantime")
	}
	return nil
}

// RedeemPromotion authoritatively consumes one unit of a promotion's
// capacity for an order and records the ledger entry. The promotion row is
// locked for the whole transaction, so redemptions of the same promotion
// are serialized; the limit re-checks under the lock close the race the
// advisory validate cannot prevent.
//
// Redeeming the same order twice is a no-op that returns the existing
// ledger entry id. On success returns the new ledger entry id. Never
// retries on its own; a caller that loses the race re-runs checkout
// without the code.
func RedeemPromotion(ctx context.Context, promotionID uint, discountAmount float64, customerID *uint, orderID uint) (uint, error) {
	ctx, cancel := context.WithTimeout(ctx, lockWaitTimeout)
	defer cancel()

	tx := config.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, WrapError(tx.Error, "failed to start redemption transaction")
	}

	var promotion models.Promotion
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&promotion, promotionID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NewPromoError(PromoErrNotFound, "Promotion no longer exists")
		}
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return 0, NewPromoError(PromoErrLockTimeout,
				"Promotion is busy, please try again")
		}
		return 0, WrapError(err, "failed to lock promotion")
	}

	// A ledger entry for this order means a previous redeem already
	// committed; return it instead of consuming capacity again.
	var existing models.PromotionUsage
	err := tx.Where("promotion_id = ? AND order_id = ?", promotionID, orderID).First(&existing).Error
	if err == nil {
		tx.Rollback()
		LogInfo("Redemption replay for order ID: %d, returning usage ID: %d", orderID, existing.ID)
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return 0, WrapError(err, "failed to check for prior redemption")
	}

	var customerUses *int
	if customerID != nil {
		var count int64
		err := tx.Model(&models.PromotionUsage{}).
			Where("promotion_id = ? AND customer_id = ?", promotionID, *customerID).
			Count(&count).Error
		if err != nil {
			tx.Rollback()
			return 0, WrapError(err, "failed to count customer redemptions")
		}
		uses := int(count)
		customerUses = &uses
	}

	if err := applyRedemption(promotion, customerUses); err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Model(&models.Promotion{}).Where("id = ?", promotionID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error; err != nil {
		tx.Rollback()
		return 0, WrapError(err, "failed to increment usage count")
	}

	usage := models.PromotionUsage{
		PromotionID:    promotionID,
		CustomerID:     customerID,
		OrderID:        orderID,
		DiscountAmount: discountAmount,
		UsedAt:         time.Now(),
	}
	if err := tx.Create(&usage).Error; err != nil {
		tx.Rollback()
		// Unique (promotion_id, order_id) backstop: a replay that raced the
		// first commit lands here; hand back the committed entry.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var committed models.PromotionUsage
			if lookupErr := config.DB.Where("promotion_id = ? AND order_id = ?", promotionID, orderID).
				First(&committed).Error; lookupErr == nil {
				return committed.ID, nil
			}
		}
		return 0, WrapError(err, "failed to record promotion usage")
	}

	if err := tx.Commit().Error; err != nil {
		return 0, WrapError(err, "failed to commit redemption")
	}

	LogInfo("Redeemed promotion ID: %d for order ID: %d, usage ID: %d, discount: %.2f",
		promotionID, orderID, usage.ID, discountAmount)
	return usage.ID, nil
}
