package utils

import (
	"testing"
	"time"

	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePromotionCode(t *testing.T) {
	assert.Equal(t, "WELCOME10", NormalizePromotionCode("  welcome10 "))
	assert.Equal(t, "SUMMER25", NormalizePromotionCode("Summer25"))
	assert.Equal(t, "", NormalizePromotionCode("   "))
}

func TestValidatePromotionCodeBlank(t *testing.T) {
	quote, err := ValidatePromotionCode("", 100000, nil)
	assert.NoError(t, err)
	assert.Nil(t, quote)

	quote, err = ValidatePromotionCode("   ", 100000, nil)
	assert.NoError(t, err)
	assert.Nil(t, quote)
}

func TestValidatePromotionCodeSuccess(t *testing.T) {
	TestSetup(t)
	CreateTestPromotion(t, nil)

	quote, err := ValidatePromotionCode("welcome10", 250000, nil)
	assert.NoError(t, err)
	assert.NotNil(t, quote)
	assert.Equal(t, "WELCOME10", quote.Promotion.Code)
	assert.Equal(t, 25000.0, quote.DiscountAmount)
}

func TestValidatePromotionCodeNotFound(t *testing.T) {
	TestSetup(t)

	_, err := ValidatePromotionCode("NOSUCHCODE", 100000, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrNotFound))
}

func TestValidatePromotionCodeInactive(t *testing.T) {
	TestSetup(t)
	CreateTestPromotion(t, func(p *models.Promotion) {
		p.Status = models.PromotionStatusInactive
	})

	_, err := ValidatePromotionCode("WELCOME10", 100000, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrNotFound))
}

func TestValidatePromotionCodeOutsideWindow(t *testing.T) {
	TestSetup(t)
	CreateTestPromotion(t, func(p *models.Promotion) {
		p.Code = "ENDED"
		p.StartDate = time.Now().Add(-48 * time.Hour)
		p.EndDate = time.Now().Add(-24 * time.Hour)
	})
	CreateTestPromotion(t, func(p *models.Promotion) {
		p.Code = "UPCOMING"
		p.StartDate = time.Now().Add(24 * time.Hour)
		p.EndDate = time.Now().Add(48 * time.Hour)
	})

	_, err := ValidatePromotionCode("ENDED", 100000, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrExpired))

	_, err = ValidatePromotionCode("UPCOMING", 100000, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrExpired))
}

func TestValidatePromotionCodeMinimumPurchaseBoundary(t *testing.T) {
	TestSetup(t)
	CreateTestPromotion(t, func(p *models.Promotion) {
		p.MinPurchaseAmount = 200000
	})

	// Exactly the minimum qualifies
	quote, err := ValidatePromotionCode("WELCOME10", 200000, nil)
	assert.NoError(t, err)
	assert.NotNil(t, quote)

	_, err = ValidatePromotionCode("WELCOME10", 199999.99, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrBelowMinimumPurchase))
}

func TestValidatePromotionCodeGlobalLimitExhausted(t *testing.T) {
	TestSetup(t)
	CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 5
		p.UsageCount = 5
	})

	_, err := ValidatePromotionCode("WELCOME10", 100000, nil)
	assert.True(t, IsPromoErrorKind(err, PromoErrLimitExceeded))
}

func TestValidatePromotionCodePerCustomerLimit(t *testing.T) {
	TestSetup(t)
	promotion := CreateTestPromotion(t, nil)

	customerID := uint(42)
	usage := models.PromotionUsage{
		PromotionID:    promotion.ID,
		CustomerID:     &customerID,
		OrderID:        1001,
		DiscountAmount: 10000,
		UsedAt:         time.Now(),
	}
	if err := config.DB.Create(&usage).Error; err != nil {
		t.Fatalf("Failed to create usage: %v", err)
	}

	_, err := ValidatePromotionCode("WELCOME10", 100000, &customerID)
	assert.True(t, IsPromoErrorKind(err, PromoErrPerCustomerLimitExceeded))

	// A different customer is unaffected
	otherCustomer := uint(43)
	quote, err := ValidatePromotionCode("WELCOME10", 100000, &otherCustomer)
	assert.NoError(t, err)
	assert.NotNil(t, quote)

	// Guest checkout skips the per-customer check
	quote, err = ValidatePromotionCode("WELCOME10", 100000, nil)
	assert.NoError(t, err)
	assert.NotNil(t, quote)
}
