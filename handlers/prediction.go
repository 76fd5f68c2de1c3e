package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"waitlist-prediction-api/models"
	"waitlist-prediction-api/predictor"
	"waitlist-prediction-api/services"

	"github.com/gin-gonic/gin"
)

type PredictionHandler struct {
	predictor  *predictor.Service
	enrichment *services.EnrichmentOrchestrator
	cache      *services.CacheService
}

func NewPredictionHandler(p *predictor.Service, e *services.EnrichmentOrchestrator, cache *services.CacheService) *PredictionHandler {
	return &PredictionHandler{predictor: p, enrichment: e, cache: cache}
}

type PredictRequest struct {
	TrainNo     string `json:"train_no" binding:"required"`
	WLStatus    *int   `json:"wl_status" binding:"required"`
	JourneyDate string `json:"journey_date" binding:"required"`
}

type PredictResponse struct {
	TrainNo        string             `json:"train_no"`
	WLStatus       int                `json:"wl_status"`
	DaysToJourney  int                `json:"days_to_journey"`
	ProbabilityPct float64            `json:"probability_pct"`
	Factors        []predictor.Factor `json:"factors"`
	Train          *models.Train      `json:"train"`
	ChartStatus    string             `json:"chart_status"`
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	journeyDate, err := time.Parse("2006-01-02", req.JourneyDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "journey_date must be an ISO date (YYYY-MM-DD)"})
		return
	}

	now := time.Now()
	cacheKey := fmt.Sprintf("prediction:%s:%d:%s:%s",
		req.TrainNo, *req.WLStatus, req.JourneyDate, now.Format("2006-01-02"))

	var cached PredictResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.TrainNo != "" {
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := h.predictor.Predict(c.Request.Context(), *req.WLStatus, journeyDate, now)
	if err != nil {
		if errors.Is(err, predictor.ErrPastJourneyDate) || errors.Is(err, predictor.ErrNegativeWaitlist) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	train, err := h.enrichment.Resolve(c.Request.Context(), req.TrainNo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "train store unavailable"})
		return
	}

	resp := PredictResponse{
		TrainNo:        req.TrainNo,
		WLStatus:       *req.WLStatus,
		DaysToJourney:  result.DaysToJourney,
		ProbabilityPct: math.Round(result.Probability*1000) / 10,
		Factors:        result.Factors,
		Train:          train,
		ChartStatus:    result.ChartStatus,
	}
	go h.cache.Set(context.Background(), cacheKey, resp, 60*time.Second)

	c.JSON(http.StatusOK, resp)
}
