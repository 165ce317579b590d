package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// HandlePing обрабатывает запрос проверки соединения с хранилищем
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CheckConnection(r.Context()); err != nil {
		h.logger.Error("Storage connection error", zap.Error(err))
		http.Error(w, "Storage connection error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
