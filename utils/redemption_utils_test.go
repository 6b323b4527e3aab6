package utils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestApplyRedemptionUnderLimits(t *testing.T) {
	promotion := models.Promotion{
		UsageLimit:        10,
		UsageCount:        9,
		UsageLimitPerUser: 1,
	}

	assert.NoError(t, applyRedemption(promotion, nil))

	uses := 0
	assert.NoError(t, applyRedemption(promotion, &uses))
}

func TestApplyRedemptionGlobalLimitReached(t *testing.T) {
	promotion := models.Promotion{
		UsageLimit:        10,
		UsageCount:        10,
		UsageLimitPerUser: 1,
	}

	err := applyRedemption(promotion, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrLimitExceeded))
}

func TestApplyRedemptionUnlimited(t *testing.T) {
	promotion := models.Promotion{
		UsageLimit:        0,
		UsageCount:        100000,
		UsageLimitPerUser: 1,
	}

	assert.NoError(t, applyRedemption(promotion, nil))
}

func TestApplyRedemptionPerCustomerLimitReached(t *testing.T) {
	promotion := models.Promotion{
		UsageLimit:        0,
		UsageLimitPerUser: 2,
	}

	uses := 2
	err := applyRedemption(promotion, &uses)
	assert.True(t, IsPromoErrorKind(err, PromoErrPerCustomerLimitExceeded))

	// The global check wins when both limits are hit
	promotion.UsageLimit = 1
	promotion.UsageCount = 1
	err = applyRedemption(promotion, &uses)
	assert.True(t, IsPromoErrorKind(err, PromoErrLimitExceeded))
}

func TestRedeemPromotionSuccess(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 10
	})

	usageID, err := RedeemPromotion(context.Background(), promotion.ID, 25000, nil, 2001)
	assert.NoError(t, err)
	assert.NotZero(t, usageID)

	var reloaded models.Promotion
	assert.NoError(t, config.DB.First(&reloaded, promotion.ID).Error)
	assert.Equal(t, 1, reloaded.UsageCount)

	var usage models.PromotionUsage
	assert.NoError(t, config.DB.First(&usage, usageID).Error)
	assert.Equal(t, promotion.ID, usage.PromotionID)
	assert.Equal(t, uint(2001), usage.OrderID)
	assert.Equal(t, 25000.0, usage.DiscountAmount)
	assert.Nil(t, usage.CustomerID)
}

func TestRedeemPromotionNotFound(t *testing.T) {
	TestSetup(t)

	_, err := RedeemPromotion(context.Background(), 999999, 1000, nil, 2002)
	assert.True(t, IsPromoErrorKind(err, PromoErrNotFound))
}

func TestRedeemPromotionIdempotentReplay(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 10
	})

	firstID, err := RedeemPromotion(context.Background(), promotion.ID, 25000, nil, 3001)
	assert.NoError(t, err)

	// Replaying the same order returns the original entry and consumes nothing
	secondID, err := RedeemPromotion(context.Background(), promotion.ID, 25000, nil, 3001)
	assert.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	var reloaded models.Promotion
	assert.NoError(t, config.DB.First(&reloaded, promotion.ID).Error)
	assert.Equal(t, 1, reloaded.UsageCount)

	var ledgerCount int64
	config.DB.Model(&models.PromotionUsage{}).Where("promotion_id = ?", promotion.ID).Count(&ledgerCount)
	assert.Equal(t, int64(1), ledgerCount)
}

func TestRedeemPromotionPerCustomerLimit(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 10
		p.UsageLimitPerUser = 1
	})

	customerID := uint(7)
	_, err := RedeemPromotion(context.Background(), promotion.ID, 10000, &customerID, 4001)
	assert.NoError(t, err)

	_, err = RedeemPromotion(context.Background(), promotion.ID, 10000, &customerID, 4002)
	assert.True(t, IsPromoErrorKind(err, PromoErrPerCustomerLimitExceeded))

	var reloaded models.Promotion
	assert.NoError(t, config.DB.First(&reloaded, promotion.ID).Error)
	assert.Equal(t, 1, reloaded.UsageCount)
}

func TestRedeemPromotionConcurrentGlobalLimit(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 3
	})

	const attempts = 5
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = RedeemPromotion(context.Background(), promotion.ID, 5000, nil, uint(5000+n))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsPromoErrorKind(err, PromoErrLimitExceeded), "unexpected error: %v", err)
	}
	assert.Equal(t, 3, succeeded)

	var reloaded models.Promotion
	assert.NoError(t, config.DB.First(&reloaded, promotion.ID).Error)
	assert.Equal(t, 3, reloaded.UsageCount)

	var ledgerCount int64
	config.DB.Model(&models.PromotionUsage{}).Where("promotion_id = ?", promotion.ID).Count(&ledgerCount)
	assert.Equal(t, int64(3), ledgerCount)
}

func TestRedeemPromotionLockTimeout(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 10
	})

	restore := lockWaitTimeout
	lockWaitTimeout = 200 * time.Millisecond
	defer func() { lockWaitTimeout = restore }()

	// Hold the promotion row lock from another transaction
	holder := config.DB.Begin()
	if holder.Error != nil {
		t.Fatalf("Failed to start holder transaction: %v", holder.Error)
	}
	defer holder.Rollback()

	var locked models.Promotion
	if err := holder.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, promotion.ID).Error; err != nil {
		t.Fatalf("Failed to lock promotion: %v", err)
	}

	_, err := RedeemPromotion(context.Background(), promotion.ID, 5000, nil, 7001)
	assert.True(t, IsPromoErrorKind(err, PromoErrLockTimeout), "unexpected error: %v", err)

	// Nothing was consumed while blocked
	var reloaded models.Promotion
	assert.NoError(t, config.DB.First(&reloaded, promotion.ID).Error)
	assert.Equal(t, 0, reloaded.UsageCount)

	// Releasing the lock lets the retry through
	holder.Rollback()
	usageID, err := RedeemPromotion(context.Background(), promotion.ID, 5000, nil, 7001)
	assert.NoError(t, err)
	assert.NotZero(t, usageID)
}

func TestRedeemPromotionUsedAtRecorded(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, nil)

	before := time.Now().Add(-time.Second)
	usageID, err := RedeemPromotion(context.Background(), promotion.ID, 5000, nil, 6001)
	assert.NoError(t, err)

	var usage models.PromotionUsage
	assert.NoError(t, config.DB.First(&usage, usageID).Error)
	assert.True(t, usage.UsedAt.After(before))
}
