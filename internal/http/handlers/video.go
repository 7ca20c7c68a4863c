package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viraltrack/viraltrack-backend/internal/http/response"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/services"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type VideoHandler struct {
	videoService services.VideoService
}

func NewVideoHandler(videoService services.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

func (vh *VideoHandler) List(c *gin.Context) {
	filter := repos.VideoFilter{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("platform"); raw != "" {
		p, err := types.ParsePlatform(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_platform", err)
			return
		}
		filter.Platform = &p
	}
	if raw := c.Query("keyword_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_keyword_id", err)
			return
		}
		filter.KeywordID = &id
	}
	if raw := c.Query("transcription_status"); raw != "" {
		st := types.TranscriptionStatus(raw)
		filter.TranscriptionStatus = &st
	}
	if days := queryInt(c, "days", 0); days > 0 {
		since := time.Now().UTC().AddDate(0, 0, -days)
		filter.ScrapedSince = &since
	}

	videos, err := vh.videoService.List(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

func (vh *VideoHandler) ListRecent(c *gin.Context) {
	videos, err := vh.videoService.ListRecent(c.Request.Context(), currentUserID(c), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

func (vh *VideoHandler) ListByKeyword(c *gin.Context) {
	keywordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	videos, err := vh.videoService.ListByKeyword(c.Request.Context(), currentUserID(c), keywordID, queryInt(c, "limit", 50))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

func (vh *VideoHandler) ListPending(c *gin.Context) {
	videos, err := vh.videoService.ListPending(c.Request.Context(), currentUserID(c), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

func (vh *VideoHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query", nil)
		return
	}
	includeTranscripts := c.DefaultQuery("include_transcripts", "true") == "true"
	videos, err := vh.videoService.Search(c.Request.Context(), currentUserID(c), term, includeTranscripts, queryInt(c, "limit", 50))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

func (vh *VideoHandler) Get(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	video, err := vh.videoService.Get(c.Request.Context(), currentUserID(c), videoID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, video)
}

func (vh *VideoHandler) Delete(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := vh.videoService.Delete(c.Request.Context(), currentUserID(c), videoID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
