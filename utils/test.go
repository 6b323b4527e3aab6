package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/stretchr/testify/assert"
)

// TestSetup initializes the test environment. Tests that need a database
// are skipped when DB_HOST is not configured.
func TestSetup(t *testing.T) {
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Skipf("Skipping: failed to load config: %v", err)
	}
	if cfg.DBHost == "" {
		t.Skip("Skipping: test database not configured")
	}

	if config.DB == nil {
		config.InitDB()
	}

	ClearTestData()
}

// ClearTestData clears all test data from the database
func ClearTestData() {
	config.DB.Exec("TRUNCATE TABLE promotion_usages CASCADE")
	config.DB.Exec("TRUNCATE TABLE promotions CASCADE")
	config.DB.Exec("TRUNCATE TABLE admins CASCADE")
	config.DB.Exec("TRUNCATE TABLE blacklisted_tokens CASCADE")
}

// CreateTestPromotion creates a promotion with sensible defaults, applying
// any overrides first
func CreateTestPromotion(t *testing.T, override func(*models.Promotion)) *models.Promotion {
	promotion := &models.Promotion{
		Code:              "WELCOME10",
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     10,
		MinPurchaseAmount: 0,
		MaxDiscountAmount: 0,
		ApplicableScope:   models.ScopeAll,
		StartDate:         time.Now().Add(-24 * time.Hour),
		EndDate:           time.Now().Add(24 * time.Hour),
		UsageLimit:        0,
		UsageLimitPerUser: 1,
		Status:            models.PromotionStatusActive,
	}
	if override != nil {
		override(promotion)
	}

	if err := config.DB.Create(promotion).Error; err != nil {
		t.Fatalf("Failed to create test promotion: %v", err)
	}

	return promotion
}

// TestRequest represents a test HTTP request
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// TestResponse represents a test HTTP response
type TestResponse struct {
	StatusCode int
	Body       map[string]interface{}
}

// MakeTestRequest makes a test HTTP request
func MakeTestRequest(t *testing.T, router *gin.Engine, req TestRequest) TestResponse {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	var responseBody map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &responseBody); err != nil {
			t.Fatalf("Failed to unmarshal response body: %v", err)
		}
	}

	return TestResponse{
		StatusCode: w.Code,
		Body:       responseBody,
	}
}

// AssertResponse asserts the test response
func AssertResponse(t *testing.T, response TestResponse, expectedStatusCode int, expectedBody map[string]interface{}) {
	assert.Equal(t, expectedStatusCode, response.StatusCode)
	if expectedBody != nil {
		assert.Equal(t, expectedBody, response.Body)
	}
}
