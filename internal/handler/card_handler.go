package handler

import (
	"net/http"

	"finance_tracker/internal/middleware"
	"finance_tracker/internal/model"
	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// CardHandler handles card requests
type CardHandler struct {
	service service.CardService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(s service.CardService) *CardHandler {
	return &CardHandler{service: s}
}

func (h *CardHandler) ListCards(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	cards, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req model.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "code": "missing_fields"})
		return
	}
	card, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"card": card})
}

func (h *CardHandler) RevealCard(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req model.RevealCardRequest
	// An empty or malformed body is reported as a missing password by the service.
	_ = c.ShouldBindJSON(&req)

	number, err := h.service.Reveal(c.Request.Context(), caller, c.Param("cardId"), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"number": number})
}

func (h *CardHandler) DeleteCard(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, c.Param("cardId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterCardRoutes registers card routes
func (h *CardHandler) RegisterCardRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	cards := rg.Group("/cards")
	cards.Use(authMW, middleware.RequireCapability(model.CapManageCards))
	{
		cards.GET("", h.ListCards)
		cards.POST("", h.CreateCard)
		cards.POST("/:cardId/reveal", h.RevealCard)
		cards.DELETE("/:cardId", h.DeleteCard)
	}
}
