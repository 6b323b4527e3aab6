package controllers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/shopweave/promoengine/utils"
	"gorm.io/gorm"
)

// CreatePromotionRequest represents the request body for creating a promotion
type CreatePromotionRequest struct {
	Code              string    `json:"code" binding:"required"`
	DiscountType      string    `json:"discount_type" binding:"required,oneof=PERCENTAGE FIXED_AMOUNT FREE_SHIPPING BUY_X_GET_Y"`
	DiscountValue     float64   `json:"discount_value" binding:"gte=0"`
	MinPurchaseAmount float64   `json:"min_purchase_amount" binding:"gte=0"`
	MaxDiscountAmount float64   `json:"max_discount_amount" binding:"gte=0"`
	ApplicableScope   string    `json:"applicable_scope" binding:"omitempty,oneof=ALL PRODUCT CATEGORY BRAND"`
	ScopeRefs         string    `json:"scope_refs"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	EndDate           time.Time `json:"end_date" binding:"required"`
	UsageLimit        int       `json:"usage_limit" binding:"gte=0"`
	UsageLimitPerUser int       `json:"usage_limit_per_user" binding:"omitempty,gte=1"`
}

// CreatePromotion creates a new promotion
func CreatePromotion(c *gin.Context) {
	utils.LogInfo("CreatePromotion called")

	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid create request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	// Codes are stored canonical upper-case
	req.Code = utils.NormalizePromotionCode(req.Code)
	if req.Code == "" {
		utils.BadRequest(c, "Promotion code cannot be blank", nil)
		return
	}

	if !req.EndDate.After(req.StartDate) {
		utils.BadRequest(c, "End date must be after start date", nil)
		return
	}
	if req.EndDate.Before(time.Now()) {
		utils.BadRequest(c, "End date must be in the future", nil)
		return
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		utils.BadRequest(c, "Percentage discount cannot exceed 100", nil)
		return
	}

	if req.ApplicableScope == "" {
		req.ApplicableScope = models.ScopeAll
	}
	if req.UsageLimitPerUser == 0 {
		req.UsageLimitPerUser = 1
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	// Check if promotion code already exists
	var existing models.Promotion
	if err := tx.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		tx.Rollback()
		utils.LogError("Promotion code already exists: %s", req.Code)
		utils.Conflict(c, "Promotion code already exists", nil)
		return
	}

	promotion := models.Promotion{
		Code:              req.Code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MinPurchaseAmount: req.MinPurchaseAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		ApplicableScope:   req.ApplicableScope,
		ScopeRefs:         req.ScopeRefs,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		UsageLimit:        req.UsageLimit,
		UsageLimitPerUser: req.UsageLimitPerUser,
		Status:            models.PromotionStatusActive,
	}

	if err := tx.Create(&promotion).Error; err != nil {
		tx.Rollback()
		// The unique index also covers codes held by soft-deleted promotions,
		// which the pre-check above does not see
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.LogError("Promotion code already exists: %s", req.Code)
			utils.Conflict(c, "Promotion code already exists", nil)
			return
		}
		utils.LogError("Failed to create promotion %s: %v", req.Code, err)
		utils.InternalServerError(c, "Failed to create promotion", err.Error())
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to commit transaction", nil)
		return
	}

	utils.LogInfo("Created promotion %s with ID: %d", promotion.Code, promotion.ID)
	utils.Created(c, "Promotion created successfully", gin.H{
		"id":                   promotion.ID,
		"code":                 promotion.Code,
		"discount_type":        promotion.DiscountType,
		"discount_value":       promotion.DiscountValue,
		"min_purchase_amount":  promotion.MinPurchaseAmount,
		"max_discount_amount":  promotion.MaxDiscountAmount,
		"applicable_scope":     promotion.ApplicableScope,
		"start_date":           promotion.StartDate.Format("2006-01-02"),
		"end_date":             promotion.EndDate.Format("2006-01-02"),
		"usage_limit":          promotion.UsageLimit,
		"usage_limit_per_user": promotion.UsageLimitPerUser,
		"usage_count":          0,
		"status":               promotion.Status,
	})
}
