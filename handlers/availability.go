package handlers

import (
	"net/http"
	"time"

	"waitlist-prediction-api/models"
	"waitlist-prediction-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AvailabilityHandler struct {
	db           *gorm.DB
	availability *services.AvailabilityService
}

func NewAvailabilityHandler(db *gorm.DB, availability *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, availability: availability}
}

func (h *AvailabilityHandler) GetSnapshots(c *gin.Context) {
	p := ParsePagination(c)
	trainNo := c.Query("train_no")

	query := h.db.Model(&models.AvailabilitySnapshot{}).Order("scraped_at DESC").Limit(p.Limit + 1)
	if p.Before != nil {
		query = query.Where("scraped_at < ?", *p.Before)
	}
	if trainNo != "" {
		query = query.Where("train_number = ?", trainNo)
	}

	var rows []models.AvailabilitySnapshot
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = rows[len(rows)-1].ScrapedAt.Format(time.RFC3339Nano)
	}

	c.JSON(http.StatusOK, CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore})
}

// RefreshSnapshots simulates fresh availability for the next 7 journey
// dates of a train.
func (h *AvailabilityHandler) RefreshSnapshots(c *gin.Context) {
	trainNo := c.Param("train_no")
	now := time.Now()

	snapshots, err := h.availability.Snapshot(c.Request.Context(), trainNo, services.NextDays(now, 7), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store snapshots"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": snapshots})
}
