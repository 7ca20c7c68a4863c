package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viraltrack/viraltrack-backend/internal/http/response"
	"github.com/viraltrack/viraltrack-backend/internal/services"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (dh *DashboardHandler) Stats(c *gin.Context) {
	stats, err := dh.dashboardService.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (dh *DashboardHandler) StatsByPlatform(c *gin.Context) {
	stats, err := dh.dashboardService.StatsByPlatform(c.Request.Context(), currentUserID(c), queryInt(c, "days", 30))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"platforms": stats})
}

func (dh *DashboardHandler) StatsByKeyword(c *gin.Context) {
	var platform *types.Platform
	if raw := c.Query("platform"); raw != "" {
		p, err := types.ParsePlatform(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_platform", err)
			return
		}
		platform = &p
	}
	stats, err := dh.dashboardService.StatsByKeyword(c.Request.Context(), currentUserID(c), platform, queryInt(c, "days", 30))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"keywords": stats})
}
