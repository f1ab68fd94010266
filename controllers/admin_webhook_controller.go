package controllers

import (
	"strconv"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
)

// ListWebhookEvents returns webhook events for the admin console.
// Filtering by processed=false surfaces the events left for manual
// inspection after business-rule failures.
func ListWebhookEvents(c *gin.Context) {
	utils.LogInfo("ListWebhookEvents called")

	query := config.DB.Model(&models.WebhookEvent{})
	if processed := c.Query("processed"); processed != "" {
		query = query.Where("processed = ?", processed == "true")
	}
	if eventType := c.Query("event_type"); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	pagination := utils.NewPagination(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count webhook events: %v", err)
		utils.InternalServerError(c, "Failed to fetch webhook events", err.Error())
		return
	}
	pagination.SetTotal(total)

	var events []models.WebhookEvent
	if err := query.Order("created_at desc").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&events).Error; err != nil {
		utils.LogError("Failed to fetch webhook events: %v", err)
		utils.InternalServerError(c, "Failed to fetch webhook events", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, events, pagination)
}

// GetWebhookEvent returns one webhook event including its raw payload
func GetWebhookEvent(c *gin.Context) {
	utils.LogInfo("GetWebhookEvent called")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid event ID", nil)
		return
	}

	var event models.WebhookEvent
	if err := config.DB.First(&event, id).Error; err != nil {
		utils.NotFound(c, "Webhook event not found")
		return
	}

	utils.Success(c, "Webhook event retrieved successfully", gin.H{"event": event})
}

// DeleteWebhookEvent removes a webhook event row. This is the only
// removal path; nothing deletes event rows automatically.
func DeleteWebhookEvent(c *gin.Context) {
	utils.LogInfo("DeleteWebhookEvent called")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid event ID", nil)
		return
	}

	var event models.WebhookEvent
	if err := config.DB.First(&event, id).Error; err != nil {
		utils.NotFound(c, "Webhook event not found")
		return
	}

	if err := config.DB.Delete(&event).Error; err != nil {
		utils.LogError("Failed to delete webhook event ID: %d: %v", id, err)
		utils.InternalServerError(c, "Failed to delete webhook event", err.Error())
		return
	}

	utils.LogInfo("Deleted webhook event ID: %d (event id %s)", id, event.EventID)
	utils.Success(c, "Webhook event deleted", gin.H{"id": id})
}
