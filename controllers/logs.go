package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"horarios_go/database"
	"horarios_go/models"

	"github.com/gofiber/fiber/v2"
)

type LogController struct{}

// LogResponse represents a log entry response
type LogResponse struct {
	ID         uint                   `json:"id"`
	UserID     uint                   `json:"user_id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID uint                   `json:"resource_id"`
	Details    map[string]interface{} `json:"details"`
	IPAddress  string                 `json:"ip_address"`
	CreatedAt  time.Time              `json:"created_at"`
}

func toLogResponse(l models.ActivityLog) LogResponse {
	resp := LogResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		Action:     l.Action,
		Resource:   l.Resource,
		ResourceID: l.ResourceID,
		IPAddress:  l.IPAddress,
		CreatedAt:  l.CreatedAt,
	}
	if len(l.Details) > 0 {
		var details map[string]interface{}
		if err := json.Unmarshal(l.Details, &details); err == nil {
			resp.Details = details
		}
	}
	return resp
}

// GetLogs retrieves paginated activity logs with filters (admin only)
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.ActivityLog{})

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	query.Count(&total)

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch logs",
		})
	}

	responses := make([]LogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, toLogResponse(l))
	}

	return c.JSON(fiber.Map{
		"logs": responses,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetLogStats returns aggregate counts for the activity log dashboard
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	var total int64
	database.DB.Model(&models.ActivityLog{}).Count(&total)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var totalToday int64
	database.DB.Model(&models.ActivityLog{}).Where("created_at >= ?", startOfDay).Count(&totalToday)

	type bucket struct {
		Key   string
		Count int64
	}

	actionBreakdown := map[string]int64{}
	var actionRows []bucket
	database.DB.Model(&models.ActivityLog{}).
		Select("action AS `key`, COUNT(*) AS count").
		Group("action").
		Scan(&actionRows)
	for _, row := range actionRows {
		actionBreakdown[row.Key] = row.Count
	}

	resourceBreakdown := map[string]int64{}
	var resourceRows []bucket
	database.DB.Model(&models.ActivityLog{}).
		Select("resource AS `key`, COUNT(*) AS count").
		Group("resource").
		Scan(&resourceRows)
	for _, row := range resourceRows {
		resourceBreakdown[row.Key] = row.Count
	}

	return c.JSON(fiber.Map{
		"total":              total,
		"total_today":        totalToday,
		"action_breakdown":   actionBreakdown,
		"resource_breakdown": resourceBreakdown,
	})
}
