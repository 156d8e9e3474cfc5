package handlers

import (
	"errors"
	"net/http"

	"github.com/yungbote/fabsketch-backend/internal/platform/apierr"
	"github.com/yungbote/fabsketch-backend/internal/services"
)

// classify maps service errors to the HTTP error envelope. Storage causes are
// never echoed; backend diagnostics are. Invocation failures only name their
// class.
func classify(err error, fallbackCode string) *apierr.Error {
	var (
		ae *apierr.Error
		ve *services.ValidationError
		be *services.BackendError
		ie *services.InvocationError
		nf *services.NotFoundError
		se *services.StorageError
	)
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &ve):
		out := apierr.New(http.StatusBadRequest, "validation_error", ve)
		if len(ve.Fields) > 0 {
			out = out.WithDetails(map[string]any{"fields": ve.Fields})
		}
		return out
	case errors.As(err, &be):
		out := apierr.New(http.StatusInternalServerError, "generation_backend_failed", errors.New("Generation backend failed")).
			WithSession(be.SessionID)
		if len(be.Details) > 0 {
			out = out.WithDetails(be.Details)
		}
		return out
	case errors.As(err, &ie):
		if ie.Timeout() {
			return apierr.New(http.StatusGatewayTimeout, "generation_timeout", errors.New("Design generation timed out")).
				WithSession(ie.SessionID)
		}
		return apierr.New(http.StatusInternalServerError, "generation_failed", errors.New("Design generation failed")).
			WithSession(ie.SessionID).
			WithDetails(map[string]any{"cause": ie.Kind()})
	case errors.As(err, &nf):
		return apierr.New(http.StatusNotFound, "not_found", nf)
	case errors.As(err, &se):
		return apierr.New(http.StatusInternalServerError, "storage_error", se)
	default:
		return apierr.New(http.StatusInternalServerError, fallbackCode, errors.New("internal error"))
	}
}
