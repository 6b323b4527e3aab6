package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopweave/promoengine/utils"
)

// RedeemPromotionRequest represents the request body for redeeming a
// promotion against a finalized order
type RedeemPromotionRequest struct {
	PromotionID    uint    `json:"promotion_id" binding:"required"`
	DiscountAmount float64 `json:"discount_amount" binding:"gte=0"`
	CustomerID     *uint   `json:"customer_id"`
	OrderID        uint    `json:"order_id" binding:"required"`
}

// RedeemPromotion consumes one unit of a promotion's capacity for an order.
// Called once per order at finalization; replaying the same order returns
// the original ledger entry without double-counting.
func RedeemPromotion(c *gin.Context) {
	utils.LogInfo("RedeemPromotion called")

	var req RedeemPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid redeem request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	utils.LogInfo("Redeeming promotion ID: %d for order ID: %d", req.PromotionID, req.OrderID)

	usageID, err := utils.RedeemPromotion(c.Request.Context(), req.PromotionID, req.DiscountAmount, req.CustomerID, req.OrderID)
	if err != nil {
		promoErr := utils.GetPromoError(err)
		if promoErr == nil {
			utils.LogError("Redemption failed for promotion ID: %d, order ID: %d: %v", req.PromotionID, req.OrderID, err)
			utils.InternalServerError(c, "Failed to redeem promotion", nil)
			return
		}
		utils.LogError("Redemption rejected for promotion ID: %d, order ID: %d: %s", req.PromotionID, req.OrderID, promoErr.Message)
		utils.Error(c, utils.PromoErrorStatus(promoErr.Kind), promoErr.Message, nil)
		return
	}

	utils.Success(c, "Promotion redeemed successfully", gin.H{
		"usage_id":     usageID,
		"promotion_id": req.PromotionID,
		"order_id":     req.OrderID,
	})
}
