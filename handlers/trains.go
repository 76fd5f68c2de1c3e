package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"waitlist-prediction-api/services"

	"github.com/gin-gonic/gin"
)

type TrainsHandler struct {
	store      services.TrainStore
	enrichment *services.EnrichmentOrchestrator
	cache      *services.CacheService
}

func NewTrainsHandler(store services.TrainStore, enrichment *services.EnrichmentOrchestrator, cache *services.CacheService) *TrainsHandler {
	return &TrainsHandler{store: store, enrichment: enrichment, cache: cache}
}

func (h *TrainsHandler) GetTrain(c *gin.Context) {
	trainNo := c.Param("train_no")
	cacheKey := fmt.Sprintf("trains:%s", trainNo)

	var cached struct {
		Data interface{} `json:"data"`
	}
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	train, err := h.enrichment.Resolve(c.Request.Context(), trainNo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "train store unavailable"})
		return
	}

	resp := gin.H{"data": train}
	go h.cache.Set(context.Background(), cacheKey, resp, 60*time.Second)

	c.JSON(http.StatusOK, resp)
}

func (h *TrainsHandler) GetSchedule(c *gin.Context) {
	trainNo := c.Param("train_no")

	stops, err := h.store.GetSchedule(c.Request.Context(), trainNo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stops})
}
