package handlers

import (
	"Bookshelf/internal/middleware"
	"Bookshelf/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondDone завершает успешную мутацию: JSON-клиенту отдаём тело, браузер уводим на список книг.
func respondDone(w http.ResponseWriter, r *http.Request, status int, v any) {
	if middleware.WantsJSON(r) {
		writeJSON(w, status, v)
		return
	}
	http.Redirect(w, r, booksPath, http.StatusSeeOther)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if middleware.WantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, status)
}

// statusFor сопоставляет ошибку сервиса с HTTP-статусом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// serviceError пишет ответ по ошибке сервиса; 5xx логируются как ошибки.
func serviceError(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, op string, err error) {
	status := statusFor(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		logger.Debugw(op, "status", status, "error", err)
		if status == http.StatusUnprocessableEntity {
			msg = err.Error()
		}
	} else {
		logger.Errorw(op, "status", status, "error", err)
	}
	writeError(w, r, status, msg)
}
