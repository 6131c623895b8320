package handler

import (
	"net/http"

	"finance_tracker/internal/middleware"
	"finance_tracker/internal/model"
	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AdvisorHandler serves both sides of the advisor request flow.
type AdvisorHandler struct {
	service service.AdvisorService
}

// NewAdvisorHandler creates a new AdvisorHandler
func NewAdvisorHandler(s service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{service: s}
}

func (h *AdvisorHandler) ListAvailable(c *gin.Context) {
	advisors, err := h.service.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, advisors)
}

func (h *AdvisorHandler) RequestAdvisor(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req model.CreateAdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrAdvisorIDRequired)
		return
	}
	request, err := h.service.RequestAdvisor(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Request sent successfully", "request": request})
}

func (h *AdvisorHandler) Status(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	status, err := h.service.Status(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *AdvisorHandler) CancelRequest(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), caller, c.Param("requestId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Request cancelled successfully"})
}

func (h *AdvisorHandler) ListRequests(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	requests, err := h.service.ListRequests(c.Request.Context(), caller, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *AdvisorHandler) Respond(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req model.RespondAdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidAction)
		return
	}
	request, err := h.service.Respond(c.Request.Context(), caller, c.Param("requestId"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Request " + string(request.Status), "request": request})
}

func (h *AdvisorHandler) ListClients(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	clients, err := h.service.ListClients(c.Request.Context(), caller, c.Query("advisorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// RegisterAdvisorRoutes registers the user-side and advisor-side routes
func (h *AdvisorHandler) RegisterAdvisorRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	user := rg.Group("/user")
	user.Use(authMW, middleware.RequireCapability(model.CapRequestAdvisor))
	{
		user.GET("/advisors", h.ListAvailable)
		user.POST("/advisor/request", h.RequestAdvisor)
		user.GET("/advisor/status", h.Status)
		user.DELETE("/advisor/request/:requestId", h.CancelRequest)
	}

	advisor := rg.Group("/advisor")
	advisor.Use(authMW)
	{
		advisor.GET("/requests", middleware.RequireCapability(model.CapRespondAdvisorRequests), h.ListRequests)
		advisor.POST("/requests/:requestId/respond", middleware.RequireCapability(model.CapRespondAdvisorRequests), h.Respond)
		advisor.GET("/clients", middleware.RequireCapability(model.CapViewClients), h.ListClients)
	}
}
