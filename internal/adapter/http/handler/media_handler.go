package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// ObjectReader returns stored image bytes by object key.
type ObjectReader interface {
	Object(key string) ([]byte, bool)
}

// MediaHandler serves images kept in process when object storage is off.
type MediaHandler struct {
	objects ObjectReader
	logger  *logger.Logger
}

func NewMediaHandler(objects ObjectReader, log *logger.Logger) *MediaHandler {
	return &MediaHandler{objects: objects, logger: log.Named("media_handler")}
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, ok := h.objects.Object(chi.URLParam(r, "*"))
	if !ok {
		writeJSON(w, h.logger, http.StatusNotFound, errorResponse{Error: "object not found"})
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
