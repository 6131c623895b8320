package handler

import (
	"net/http"

	"finance_tracker/internal/middleware"
	"finance_tracker/internal/model"
	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// SpendingHandler handles ledger and report requests
type SpendingHandler struct {
	service service.SpendingService
}

// NewSpendingHandler creates a new SpendingHandler
func NewSpendingHandler(s service.SpendingService) *SpendingHandler {
	return &SpendingHandler{service: s}
}

func (h *SpendingHandler) CreateSpending(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req model.CreateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	spending, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "spending": spending})
}

func (h *SpendingHandler) WeeklySummary(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	weeks, err := h.service.WeeklySummary(c.Request.Context(), caller, queryInt(c, "weeks", service.DefaultSummaryWeeks))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "weeks": weeks})
}

func (h *SpendingHandler) RecentSpendings(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	spendings, err := h.service.Recent(c.Request.Context(), caller, queryInt(c, "limit", service.DefaultRecentLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "spendings": spendings})
}

func (h *SpendingHandler) DistributionPie(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	dist, err := h.service.CategoryDistribution(c.Request.Context(), caller, queryInt(c, "days", service.DefaultDistribDays))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"total":      dist.Total,
		"days":       dist.Days,
		"categories": dist.Categories,
		"summary":    dist.Summary,
	})
}

// RegisterSpendingRoutes registers spending routes
func (h *SpendingHandler) RegisterSpendingRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	spendings := rg.Group("/spendings")
	spendings.Use(authMW, middleware.RequireCapability(model.CapTrackSpending))
	{
		spendings.POST("", h.CreateSpending)
		spendings.GET("/weekly", h.WeeklySummary)
		spendings.GET("/list", h.RecentSpendings)
		spendings.GET("/distribution-pie", h.DistributionPie)
	}
}
