package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/shopweave/promoengine/utils"
)

// ListPromotions returns promotions with optional search and status filters
func ListPromotions(c *gin.Context) {
	utils.LogInfo("ListPromotions called")

	pagination := utils.NewPagination(c)
	search := c.Query("search")
	status := c.Query("status")

	query := config.DB.Model(&models.Promotion{})
	if search != "" {
		query = query.Where("code ILIKE ?", "%"+search+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count promotions: %v", err)
		utils.InternalServerError(c, "Failed to fetch promotions", err.Error())
		return
	}
	pagination.SetTotal(total)

	var promotions []models.Promotion
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&promotions).Error; err != nil {
		utils.LogError("Failed to fetch promotions: %v", err)
		utils.InternalServerError(c, "Failed to fetch promotions", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d promotions", len(promotions))

	now := time.Now()
	list := make([]gin.H, 0, len(promotions))
	for _, promotion := range promotions {
		remaining := -1 // unlimited
		if promotion.UsageLimit > 0 {
			remaining = promotion.UsageLimit - promotion.UsageCount
		}
		list = append(list, gin.H{
			"id":                   promotion.ID,
			"code":                 promotion.Code,
			"discount_type":        promotion.DiscountType,
			"discount_value":       promotion.DiscountValue,
			"min_purchase_amount":  promotion.MinPurchaseAmount,
			"max_discount_amount":  promotion.MaxDiscountAmount,
			"start_date":           promotion.StartDate.Format("2006-01-02"),
			"end_date":             promotion.EndDate.Format("2006-01-02"),
			"usage_limit":          promotion.UsageLimit,
			"usage_count":          promotion.UsageCount,
			"remaining_uses":       remaining,
			"usage_limit_per_user": promotion.UsageLimitPerUser,
			"status":               promotion.Status,
			"is_expired":           now.After(promotion.EndDate),
		})
	}

	utils.SendPaginatedResponse(c, list, pagination)
}

// GetPromotion returns a single promotion by id
func GetPromotion(c *gin.Context) {
	utils.LogInfo("GetPromotion called")

	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid promotion ID", nil)
		return
	}

	var promotion models.Promotion
	if err := config.DB.First(&promotion, uint(promotionID)).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return
	}

	utils.Success(c, "Promotion retrieved", gin.H{"promotion": promotion})
}

// DeletePromotion removes a promotion that has never been redeemed. Once
// ledger entries reference it, the promotion must be deactivated instead
// so the ledger keeps a valid parent.
func DeletePromotion(c *gin.Context) {
	utils.LogInfo("DeletePromotion called")

	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid promotion ID", nil)
		return
	}

	var promotion models.Promotion
	if err := config.DB.First(&promotion, uint(promotionID)).Error; err != nil {
		utils.LogError("Promotion not found, ID: %d", promotionID)
		utils.NotFound(c, "Promotion not found")
		return
	}

	var usageCount int64
	if err := config.DB.Model(&models.PromotionUsage{}).
		Where("promotion_id = ?", promotion.ID).
		Count(&usageCount).Error; err != nil {
		utils.LogError("Failed to count usages for promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to delete promotion", err.Error())
		return
	}
	if usageCount > 0 {
		utils.LogError("Cannot delete promotion %s: it has been redeemed %d times", promotion.Code, usageCount)
		utils.Conflict(c, "Promotion has been redeemed and cannot be deleted; deactivate it instead", nil)
		return
	}

	if err := config.DB.Delete(&promotion).Error; err != nil {
		utils.LogError("Failed to delete promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to delete promotion", err.Error())
		return
	}

	utils.LogInfo("Deleted promotion %s, ID: %d", promotion.Code, promotion.ID)
	utils.Success(c, "Promotion deleted successfully", nil)
}
