package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fitpulse/identity/internal/auth"
	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/store"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        int    `json:"error_code,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, desc string, errCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		ErrorCode:        errCode,
		RequestID:        rid,
	})
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON: decodifica JSON de forma tolerante (NO falla por campos desconocidos).
// Valida Content-Type y limita el tamaño del body a 64KB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Content-Type debe ser application/json", 1102)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "invalid_json", "json inválido", 1102)
		return false
	}
	return true
}

// WriteDomainError traduce errores de dominio al status HTTP correspondiente.
// Cualquier error no clasificado cae en 500 con mensaje genérico: el detalle
// queda en los logs, nunca en la respuesta.
func WriteDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, "validation_error", ve.Field+": "+ve.Reason, 1201)
		return
	}

	var ce *store.ConflictError
	if errors.As(err, &ce) {
		WriteError(w, http.StatusConflict, "conflict", ce.Field+" ya está en uso", 1301)
		return
	}

	var ue *auth.UnauthorizedError
	if errors.As(err, &ue) {
		WriteError(w, http.StatusUnauthorized, "unauthorized", ue.Reason, 1401)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAttemptsExceeded):
		WriteError(w, http.StatusTooManyRequests, "too_many_attempts", "demasiados intentos, solicitá un código nuevo", 1429)
	case errors.Is(err, domain.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "demasiadas solicitudes, probá más tarde", 1430)
	case errors.Is(err, domain.ErrAlreadyVerified):
		WriteError(w, http.StatusConflict, "already_verified", "la cuenta ya está verificada", 1302)
	case errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch):
		WriteError(w, http.StatusBadRequest, "invalid_code", err.Error(), 1202)
	case errors.Is(err, domain.ErrResetInvalidOrExpired):
		WriteError(w, http.StatusBadRequest, "invalid_token", "token inválido o expirado", 1203)
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "credenciales inválidas", 1401)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "recurso no encontrado", 1404)
	case errors.Is(err, domain.ErrExternalService):
		WriteError(w, http.StatusBadGateway, "external_service", "servicio externo no disponible", 1502)
	case errors.Is(err, domain.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "conflicto con el estado actual", 1301)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", 1500)
	}
}
