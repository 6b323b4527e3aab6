package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/shopweave/promoengine/config"
	"github.com/shopweave/promoengine/models"
	"github.com/shopweave/promoengine/utils"
)

// ListPromotionUsages returns the usage ledger of a promotion with summary stats
func ListPromotionUsages(c *gin.Context) {
	utils.LogInfo("ListPromotionUsages called")

	promotion, ok := loadPromotionParam(c)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)

	var total int64
	var totalDiscount float64
	query := config.DB.Model(&models.PromotionUsage{}).Where("promotion_id = ?", promotion.ID)
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count usages for promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to fetch usage ledger", err.Error())
		return
	}
	if err := query.Select("COALESCE(SUM(discount_amount), 0)").Scan(&totalDiscount).Error; err != nil {
		utils.LogError("Failed to sum discounts for promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to fetch usage ledger", err.Error())
		return
	}
	pagination.SetTotal(total)

	var usages []models.PromotionUsage
	if err := config.DB.Where("promotion_id = ?", promotion.ID).
		Order("used_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&usages).Error; err != nil {
		utils.LogError("Failed to fetch usages for promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to fetch usage ledger", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d usages for promotion %s", len(usages), promotion.Code)

	utils.Success(c, "Usage ledger retrieved", gin.H{
		"promotion": gin.H{
			"id":          promotion.ID,
			"code":        promotion.Code,
			"usage_count": promotion.UsageCount,
			"usage_limit": promotion.UsageLimit,
		},
		"summary": gin.H{
			"total_redemptions": total,
			"total_discount":    fmt.Sprintf("%.2f", utils.RoundMoney(totalDiscount)),
		},
		"usages": usages,
		"pagination": gin.H{
			"total":        pagination.Total,
			"current_page": pagination.Page,
			"last_page":    pagination.LastPage,
			"per_page":     pagination.Limit,
		},
	})
}

// ExportPromotionUsages downloads the full usage ledger of a promotion as
// an Excel or PDF file
func ExportPromotionUsages(c *gin.Context) {
	utils.LogInfo("ExportPromotionUsages called")

	promotion, ok := loadPromotionParam(c)
	if !ok {
		return
	}

	var usages []models.PromotionUsage
	if err := config.DB.Where("promotion_id = ?", promotion.ID).
		Order("used_at DESC").
		Find(&usages).Error; err != nil {
		utils.LogError("Failed to fetch usages for promotion %s: %v", promotion.Code, err)
		utils.InternalServerError(c, "Failed to fetch usage ledger", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d usages for export, promotion %s", len(usages), promotion.Code)

	var totalDiscount float64
	for _, usage := range usages {
		totalDiscount += usage.DiscountAmount
	}
	totalDiscount = utils.RoundMoney(totalDiscount)

	format := c.DefaultQuery("format", "excel")
	switch format {
	case "excel":
		exportUsagesExcel(c, promotion, usages, totalDiscount)
	case "pdf":
		exportUsagesPDF(c, promotion, usages, totalDiscount)
	default:
		utils.LogError("Invalid export format: %s", format)
		utils.BadRequest(c, "Invalid format", "Format must be excel or pdf")
	}
}

func loadPromotionParam(c *gin.Context) (*models.Promotion, bool) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid promotion ID", nil)
		return nil, false
	}

	var promotion models.Promotion
	if err := config.DB.First(&promotion, uint(promotionID)).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return nil, false
	}
	return &promotion, true
}

func formatCustomer(customerID *uint) string {
	if customerID == nil {
		return "guest"
	}
	return fmt.Sprintf("%d", *customerID)
}

func exportUsagesExcel(c *gin.Context, promotion *models.Promotion, usages []models.PromotionUsage, totalDiscount float64) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Usage Ledger")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("SHOPWEAVE - Promotion Usage Ledger")
	codeRow := sheet.AddRow()
	codeRow.AddCell().SetString("Promotion: " + promotion.Code)
	windowRow := sheet.AddRow()
	windowRow.AddCell().SetString("Window: " + promotion.StartDate.Format("2006-01-02") + " to " + promotion.EndDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Usage ID", "Order ID", "Customer", "Discount", "Used At"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, usage := range usages {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(usage.ID))
		row.AddCell().SetInt(int(usage.OrderID))
		row.AddCell().SetString(formatCustomer(usage.CustomerID))
		row.AddCell().SetFloat(usage.DiscountAmount)
		row.AddCell().SetString(usage.UsedAt.Format("2006-01-02 15:04"))
	}

	sheet.AddRow() // spacing
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Total Redemptions")
	summaryRow.AddCell().SetInt(len(usages))
	discountRow := sheet.AddRow()
	discountRow.AddCell().SetString("Total Discount Granted")
	discountRow.AddCell().SetString(fmt.Sprintf("%.2f", totalDiscount))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=promotion_%s_usages.xlsx", promotion.Code))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Exported Excel usage ledger for promotion %s", promotion.Code)
}

func exportUsagesPDF(c *gin.Context, promotion *models.Promotion, usages []models.PromotionUsage, totalDiscount float64) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "SHOPWEAVE - Promotion Usage Ledger")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Promotion: "+promotion.Code)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Window: "+promotion.StartDate.Format("2006-01-02")+" to "+promotion.EndDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"Usage ID", "Order ID", "Customer", "Discount", "Used At"}
	colWidths := []float64{25, 25, 35, 35, 45}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	fill := false
	for _, usage := range usages {
		pdf.SetFillColor(245, 245, 245)
		if fill {
			pdf.SetFillColor(230, 240, 255)
		}
		fill = !fill
		pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("%d", usage.ID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", usage.OrderID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[2], 8, formatCustomer(usage.CustomerID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", usage.DiscountAmount), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[4], 8, usage.UsedAt.Format("2006-01-02 15:04"), "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(60, 9, "Total Redemptions", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, fmt.Sprintf("%d", len(usages)), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(60, 9, "Total Discount Granted", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, fmt.Sprintf("%.2f", totalDiscount), "1", 0, "R", false, 0, "")

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=promotion_%s_usages.pdf", promotion.Code))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("Exported PDF usage ledger for promotion %s", promotion.Code)
}
