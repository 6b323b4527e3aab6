package utils

import (
	"math"

	"github.com/shopweave/promoengine/models"
)

// RoundMoney rounds a monetary amount to 2 decimals, halves away from zero
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateDiscount computes the discount a promotion grants on an order
// total. Pure function: no I/O, deterministic.
//
// FREE_SHIPPING and BUY_X_GET_Y grant no monetary discount on the order
// total; shipping waivers and bonus items are settled by the fulfillment
// side, so both validate fine and pass through with a zero amount.
func CalculateDiscount(promotion models.Promotion, orderTotal float64) (float64, error) {
	var discount float64

	switch promotion.DiscountType {
	case models.DiscountTypePercentage:
		discount = RoundMoney(orderTotal * promotion.DiscountValue / 100)
	case models.DiscountTypeFixedAmount:
		discount = promotion.DiscountValue
	case models.DiscountTypeFreeShipping, models.DiscountTypeBuyXGetY:
		discount = 0
	default:
		return 0, NewPromoError(PromoErrInvalidDiscountConfiguration,
			"Promotion has an unsupported discount type")
	}

	if promotion.MaxDiscountAmount > 0 && discount > promotion.MaxDiscountAmount {
		discount = promotion.MaxDiscountAmount
	}
	if discount > orderTotal {
		discount = orderTotal
	}
	if discount < 0 {
		discount = 0
	}

	return RoundMoney(discount), nil
}
