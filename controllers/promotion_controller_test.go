package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/shopweave/promoengine/utils"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/promotions/validate", ValidatePromotion)
	router.POST("/v1/promotions/redeem", RedeemPromotion)
	return router
}

func TestValidateEndpointQuotesDiscount(t *testing.T) {
	utils.TestSetup(t)
	utils.CreateTestPromotion(t, func(p *models.Promotion) {
		p.Code = "SUMMER25"
		p.DiscountType = models.DiscountTypeFixedAmount
		p.DiscountValue = 25000
		p.MinPurchaseAmount = 100000
	})
	router := setupTestRouter()

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/v1/promotions/validate",
		Body: gin.H{
			"code":        "summer25",
			"order_total": 150000,
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := resp.Body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected response body: %v", resp.Body)
	}
	assert.Equal(t, true, data["applicable"])
	assert.Equal(t, "SUMMER25", data["code"])
	assert.Equal(t, "25000.00", data["discount_amount"])
	assert.Equal(t, "125000.00", data["final_total"])
}

func TestValidateEndpointBlankCode(t *testing.T) {
	utils.TestSetup(t)
	router := setupTestRouter()

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/v1/promotions/validate",
		Body:   gin.H{"code": "", "order_total": 50000},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := resp.Body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected response body: %v", resp.Body)
	}
	assert.Equal(t, false, data["applicable"])
}

func TestValidateEndpointUnknownCode(t *testing.T) {
	utils.TestSetup(t)
	router := setupTestRouter()

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/v1/promotions/validate",
		Body:   gin.H{"code": "NOSUCHCODE", "order_total": 50000},
	})

	utils.AssertResponse(t, resp, http.StatusNotFound, nil)
}

func TestCreateEndpointRejectsCodeHeldBySoftDeletedPromotion(t *testing.T) {
	utils.TestSetup(t)
	promotion := utils.CreateTestPromotion(t, nil)
	if err := config.DB.Delete(promotion).Error; err != nil {
		t.Fatalf("Failed to soft-delete promotion: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/admin/promotions", CreatePromotion)

	// The soft-deleted row still owns the code in the unique index
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/v1/admin/promotions",
		Body: gin.H{
			"code":           "WELCOME10",
			"discount_type":  models.DiscountTypePercentage,
			"discount_value": 10,
			"start_date":     time.Now().Format(time.RFC3339),
			"end_date":       time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRedeemEndpointConsumesCapacity(t *testing.T) {
	utils.TestSetup(t)
	promotion := utils.CreateTestPromotion(t, func(p *models.Promotion) {
		p.UsageLimit = 1
	})
	router := setupTestRouter()

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/v1/promotions/redeem",
		Body: gin.H{
			"promotion_id":    promotion.ID,
			"discount_amount": 5000,
			"order_id":        9001,
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Capacity is gone for the next order
	resp = utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/v1/promotions/redeem",
		Body: gin.H{
			"promotion_id":    promotion.ID,
			"discount_amount": 5000,
			"order_id":        9002,
		},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
