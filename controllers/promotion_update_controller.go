package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/shopweave/promoengine/utils"
)

// UpdatePromotionRequest represents the request body for editing a
// promotion; only provided fields are changed
type UpdatePromotionRequest struct {
	DiscountValue     *float64   `json:"discount_value" binding:"omitempty,gte=0"`
	MinPurchaseAmount *float64   `json:"min_purchase_amount" binding:"omitempty,gte=0"`
	MaxDiscountAmount *float64   `json:"max_discount_amount" binding:"omitempty,gte=0"`
	ScopeRefs         *string    `json:"scope_refs"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	UsageLimit        *int       `json:"usage_limit" binding:"omitempty,gte=0"`
	UsageLimitPerUser *int       `json:"usage_limit_per_user" binding:"omitempty,gte=1"`
}

// UpdatePromotion edits a promotion. The code and discount type are fixed
// once created; orders already quoted against them must stay consistent.
func UpdatePromotion(c *gin.Context) {
	utils.LogInfo("UpdatePromotion called")

	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid promotion ID", nil)
		return
	}

	var req UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid update request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var promotion models.Promotion
	if err := config.DB.First(&promotion, uint(promotionID)).Error; err != nil {
		utils.LogError("Promotion not found, ID: %d", promotionID)
		utils.NotFound(c, "Promotion not found")
		return
	}

	if req.DiscountValue != nil {
		if promotion.DiscountType == models.DiscountTypePercentage && *req.DiscountValue > 100 {
			utils.BadRequest(c, "Percentage discount cannot exceed 100", nil)
			return
		}
		promotion.DiscountValue = *req.DiscountValue
	}
	if req.MinPurchaseAmount != nil {
		promotion.MinPurchaseAmount = *req.MinPurchaseAmount
	}
	if req.MaxDiscountAmount != nil {
		promotion.MaxDiscountAmount = *req.MaxDiscountAmount
	}
	if req.ScopeRefs != nil {
		promotion.ScopeRefs = *req.ScopeRefs
	}
	if req.StartDate != nil {
		promotion.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		promotion.EndDate = *req.EndDate
	}
	if !promotion.EndDate.After(promotion.StartDate) {
		utils.BadRequest(c, "End date must be after start date", nil)
		return
	}

	if req.UsageLimit != nil {
		// The capacity already handed out cannot be revoked
		if *req.UsageLimit > 0 && *req.UsageLimit < promotion.UsageCount {
			utils.LogError("Usage limit %d below current usage count %d for promotion %s",
				*req.UsageLimit, promotion.UsageCount, promotion.Code)
			utils.BadRequest(c, "Usage limit cannot be lower than the current usage count", nil)
			return
		}
		promotion.UsageLimit = *req.UsageLimit
	}
	if req.UsageLimitPerUser != nil {
		promotion.UsageLimitPerUser = *req.UsageLimitPerUser
	}

	if err := config.DB.Save(&promotion).Error; err != nil {
		utils.LogError("Failed to update promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to update promotion", err.Error())
		return
	}

	utils.LogInfo("Updated promotion %s, ID: %d", promotion.Code, promotion.ID)
	utils.Success(c, "Promotion updated successfully", gin.H{
		"id":                   promotion.ID,
		"code":                 promotion.Code,
		"discount_type":        promotion.DiscountType,
		"discount_value":       promotion.DiscountValue,
		"min_purchase_amount":  promotion.MinPurchaseAmount,
		"max_discount_amount":  promotion.MaxDiscountAmount,
		"start_date":           promotion.StartDate.Format("2006-01-02"),
		"end_date":             promotion.EndDate.Format("2006-01-02"),
		"usage_limit":          promotion.UsageLimit,
		"usage_limit_per_user": promotion.UsageLimitPerUser,
		"usage_count":          promotion.UsageCount,
		"status":               promotion.Status,
	})
}

// UpdatePromotionStatus activates or deactivates a promotion. Deactivation
// is the supported way to retire a promotion that has been used.
func UpdatePromotionStatus(c *gin.Context) {
	utils.LogInfo("UpdatePromotionStatus called")

	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid promotion ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var promotion models.Promotion
	if err := config.DB.First(&promotion, uint(promotionID)).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return
	}

	promotion.Status = req.Status
	if err := config.DB.Save(&promotion).Error; err != nil {
		utils.LogError("Failed to update status for promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to update promotion status", err.Error())
		return
	}

	utils.LogInfo("Promotion %s status set to %s", promotion.Code, promotion.Status)
	utils.Success(c, "Promotion status updated", gin.H{
		"id":     promotion.ID,
		"code":   promotion.Code,
		"status": promotion.Status,
	})
}
