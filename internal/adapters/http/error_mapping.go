package httpadapter

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

var statusByKind = map[error]int{
	domain.ErrInvalidInput:       http.StatusBadRequest,
	domain.ErrUnauthorized:       http.StatusUnauthorized,
	domain.ErrSubmissionNotFound: http.StatusNotFound,
	domain.ErrExtraction:         http.StatusUnprocessableEntity,
	domain.ErrTemporary:          http.StatusServiceUnavailable,
}

func mapErrorToHTTPStatus(err error) int {
	if status, ok := statusByKind[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError hides the message of unexpected failures; the log keeps it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("http_internal_error")
		message = "internal error"
	}
	writeJSONError(w, r, status, message)
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":      message,
		"request_id": requestIDFromContext(r.Context()),
	})
}
