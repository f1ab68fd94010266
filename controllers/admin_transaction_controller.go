package controllers

import (
	"fmt"
	"time"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// ListTransactions returns payment transactions for the admin console,
// optionally filtered by status
func ListTransactions(c *gin.Context) {
	utils.LogInfo("ListTransactions called")

	query := config.DB.Model(&models.PaymentTransaction{})
	if status := c.Query("status"); status != "" {
		if !models.ValidPaymentStatus(status) {
			utils.BadRequest(c, "Unknown payment status filter", gin.H{"status": status})
			return
		}
		query = query.Where("status = ?", status)
	}
	if orderID := c.Query("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	pagination := utils.NewPagination(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count transactions: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}
	pagination.SetTotal(total)

	var transactions []models.PaymentTransaction
	if err := query.Order("created_at desc").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, transactions, pagination)
}

// ExportTransactions writes all payment transactions to an Excel sheet
func ExportTransactions(c *gin.Context) {
	utils.LogInfo("ExportTransactions called")

	var transactions []models.PaymentTransaction
	query := config.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payment Transactions")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	headers := []string{"ID", "Order ID", "Razorpay Order ID", "Razorpay Payment ID",
		"Amount", "Currency", "Status", "Method", "Failure Reason", "Created At"}
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

	for _, txn := range transactions {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(txn.ID))
		row.AddCell().SetInt(int(txn.OrderID))
		row.AddCell().SetString(txn.RazorpayOrderID)
		row.AddCell().SetString(txn.RazorpayPaymentID)
		row.AddCell().SetString(fmt.Sprintf("%.2f", txn.Amount))
		row.AddCell().SetString(txn.Currency)
		row.AddCell().SetString(txn.Status)
		row.AddCell().SetString(txn.PaymentMethod)
		if txn.FailureReason != nil {
			row.AddCell().SetString(*txn.FailureReason)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(txn.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.xlsx",
		time.Now().Format("2006-01-02")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
}
