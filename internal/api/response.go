package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"verification_portal/internal/apperrors"
	"verification_portal/internal/model"
	"verification_portal/internal/session"

	"go.uber.org/zap"
)

// errorBody - тело ответа с ошибкой. Errors заполняется для ошибок валидации.
type errorBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Kind    apperrors.Kind    `json:"kind"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, model.Envelope[any]{Success: true, Data: data, Message: message})
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidState:
		return http.StatusConflict
	case apperrors.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrStale) {
		err = apperrors.InvalidState("edit verification", "verification changed while the request was in flight, reload and retry")
	}
	kind := apperrors.KindOf(err)
	status := statusFor(kind)

	message := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusBadGateway {
		h.logger.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		message = "verification backend is unavailable"
	}

	writeJSON(w, status, errorBody{
		Success: false,
		Message: message,
		Kind:    kind,
		Errors:  apperrors.FieldsOf(err),
	})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ValidationMessage("decode request", "invalid request body: "+err.Error())
	}
	return nil
}
