package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viraltrack/viraltrack-backend/internal/http/response"
	"github.com/viraltrack/viraltrack-backend/internal/services"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (sh *SettingsHandler) Get(c *gin.Context) {
	settings, err := sh.settingsService.GetOrCreate(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, settings)
}

func (sh *SettingsHandler) Update(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	settings, err := sh.settingsService.Update(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, settings)
}

func (sh *SettingsHandler) ConnectSheet(c *gin.Context) {
	var req struct {
		SheetID string `json:"sheet_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.SheetID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_sheet_id", nil)
		return
	}
	if err := sh.settingsService.ConnectSheet(c.Request.Context(), currentUserID(c), req.SheetID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
