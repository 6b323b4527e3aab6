package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopweave/promoengine/utils"
)

// ValidatePromotionRequest represents the request body for validating a code
type ValidatePromotionRequest struct {
	Code       string  `json:"code"`
	OrderTotal float64 `json:"order_total" binding:"gte=0"`
	CustomerID *uint   `json:"customer_id"`
}

// ValidatePromotion quotes the discount a code would grant on an order.
// Advisory and read-only: checkout calls it on every cart change, and a
// successful quote can still lose the race at redemption time.
func ValidatePromotion(c *gin.Context) {
	utils.LogInfo("ValidatePromotion called")

	var req ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid validate request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	quote, err := utils.ValidatePromotionCode(req.Code, req.OrderTotal, req.CustomerID)
	if err != nil {
		promoErr := utils.GetPromoError(err)
		if promoErr == nil {
			utils.LogError("Validation failed for code %s: %v", req.Code, err)
			utils.InternalServerError(c, "Failed to validate promotion", nil)
			return
		}
		utils.LogInfo("Promotion rejected for code %s: %s", req.Code, promoErr.Message)
		utils.Error(c, utils.PromoErrorStatus(promoErr.Kind), promoErr.Message, nil)
		return
	}

	// Blank code: nothing to apply, not an error
	if quote == nil {
		utils.Success(c, "No promotion applied", gin.H{
			"applicable":      false,
			"discount_amount": "0.00",
		})
		return
	}

	utils.LogInfo("Promotion %s quoted for order total %.2f, discount %.2f",
		quote.Promotion.Code, req.OrderTotal, quote.DiscountAmount)
	utils.Success(c, "Promotion is applicable", gin.H{
		"applicable":      true,
		"promotion_id":    quote.Promotion.ID,
		"code":            quote.Promotion.Code,
		"discount_type":   quote.Promotion.DiscountType,
		"discount_amount": fmt.Sprintf("%.2f", quote.DiscountAmount),
		"final_total":     fmt.Sprintf("%.2f", utils.RoundMoney(req.OrderTotal-quote.DiscountAmount)),
	})
}
