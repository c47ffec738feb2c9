package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Warn("encode failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, msg string) {
	writeJSON(w, r, logger, status, map[string]string{"error": msg})
}
