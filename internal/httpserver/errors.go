package httpserver

import (
	"errors"
	"log"
	"net/http"

	"messenger/internal/domain"
)

func statusFor(kind error) int {
	switch kind {
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrForbidden:
		return http.StatusForbidden
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to its status and a caller-safe message.
func writeError(w http.ResponseWriter, err error) {
	var exists *domain.ChatExistsError
	if errors.As(err, &exists) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": exists.Error(), "chat_id": exists.ChatID})
		return
	}

	kind := domain.KindOf(err)
	if kind == domain.ErrInternal {
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	msg := kind.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Error()
	}
	writeJSON(w, statusFor(kind), map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
