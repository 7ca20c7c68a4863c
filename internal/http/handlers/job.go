package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viraltrack/viraltrack-backend/internal/http/response"
	"github.com/viraltrack/viraltrack-backend/internal/services"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type JobHandler struct {
	jobService           services.ScrapeJobService
	transcriptionService services.TranscriptionService
}

func NewJobHandler(jobService services.ScrapeJobService, transcriptionService services.TranscriptionService) *JobHandler {
	return &JobHandler{jobService: jobService, transcriptionService: transcriptionService}
}

// StartScrape kicks off a scrape run; the body may pin it to one platform.
func (jh *JobHandler) StartScrape(c *gin.Context) {
	var req struct {
		Platform string `json:"platform"`
	}
	// Body is optional; ignore EOF-style bind errors on empty payloads.
	_ = c.ShouldBindJSON(&req)

	var platform *types.Platform
	if req.Platform != "" {
		p, err := types.ParsePlatform(req.Platform)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_platform", err)
			return
		}
		platform = &p
	}

	job, err := jh.jobService.StartJob(c.Request.Context(), currentUserID(c), platform)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondAccepted(c, job)
}

func (jh *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := jh.jobService.ListJobs(c.Request.Context(), currentUserID(c), queryInt(c, "limit", 10))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (jh *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	job, err := jh.jobService.GetJob(c.Request.Context(), currentUserID(c), jobID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, job)
}

func (jh *JobHandler) Transcribe(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	video, err := jh.transcriptionService.Start(c.Request.Context(), currentUserID(c), videoID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondAccepted(c, video)
}

func (jh *JobHandler) TranscribeAllPending(c *gin.Context) {
	triggered, err := jh.transcriptionService.StartAllPending(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"triggered": triggered})
}
