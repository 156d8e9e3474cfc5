package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/fabsketch-backend/internal/platform/apierr"
)

type ErrorEnvelope struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: msg,
		Code:  code,
	})
}

// RespondAPIError renders ae with its details and session id, if any.
func RespondAPIError(c *gin.Context, ae *apierr.Error) {
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := "unknown error"
	if ae.Err != nil {
		msg = ae.Err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error:     msg,
		Code:      ae.Code,
		Details:   ae.Details,
		SessionID: ae.SessionID,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
