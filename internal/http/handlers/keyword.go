package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viraltrack/viraltrack-backend/internal/http/response"
	"github.com/viraltrack/viraltrack-backend/internal/services"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type KeywordHandler struct {
	keywordService services.KeywordService
}

func NewKeywordHandler(keywordService services.KeywordService) *KeywordHandler {
	return &KeywordHandler{keywordService: keywordService}
}

func (kh *KeywordHandler) List(c *gin.Context) {
	var platform *types.Platform
	if raw := c.Query("platform"); raw != "" {
		p, err := types.ParsePlatform(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_platform", err)
			return
		}
		platform = &p
	}
	activeOnly := c.Query("active_only") == "true"

	keywords, err := kh.keywordService.List(c.Request.Context(), currentUserID(c), platform, activeOnly)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"keywords": keywords, "count": len(keywords)})
}

func (kh *KeywordHandler) Create(c *gin.Context) {
	var req struct {
		Keyword       string `json:"keyword"`
		Platform      string `json:"platform"`
		ResultsPerRun int    `json:"results_per_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	platform, err := types.ParsePlatform(req.Platform)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_platform", err)
		return
	}
	kw, err := kh.keywordService.Create(c.Request.Context(), currentUserID(c), req.Keyword, platform, req.ResultsPerRun)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, kw)
}

func (kh *KeywordHandler) CreateBulk(c *gin.Context) {
	var req struct {
		Keywords      []string `json:"keywords"`
		Platform      string   `json:"platform"`
		ResultsPerRun int      `json:"results_per_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	platform, err := types.ParsePlatform(req.Platform)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_platform", err)
		return
	}
	created, skipped, err := kh.keywordService.CreateBulk(c.Request.Context(), currentUserID(c), req.Keywords, platform, req.ResultsPerRun)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"created": created,
		"skipped": skipped,
	})
}

func (kh *KeywordHandler) Update(c *gin.Context) {
	keywordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	kw, err := kh.keywordService.Update(c.Request.Context(), currentUserID(c), keywordID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, kw)
}

func (kh *KeywordHandler) Delete(c *gin.Context) {
	keywordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := kh.keywordService.Delete(c.Request.Context(), currentUserID(c), keywordID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
