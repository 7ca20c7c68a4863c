package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viraltrack/viraltrack-backend/internal/services"
)

// RespondServiceError translates a service sentinel into the right HTTP
// status. Anything unrecognized is a 500.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		RespondError(c, http.StatusConflict, "email_taken", err)
	case errors.Is(err, services.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrKeywordNotFound),
		errors.Is(err, services.ErrVideoNotFound),
		errors.Is(err, services.ErrJobNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrKeywordExists):
		RespondError(c, http.StatusConflict, "keyword_exists", err)
	case errors.Is(err, services.ErrJobAlreadyRunning):
		RespondError(c, http.StatusConflict, "job_already_running", err)
	case errors.Is(err, services.ErrTranscriptionInProgress):
		RespondError(c, http.StatusConflict, "transcription_in_progress", err)
	case errors.Is(err, services.ErrSheetNotConnected):
		RespondError(c, http.StatusBadRequest, "sheet_not_connected", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
