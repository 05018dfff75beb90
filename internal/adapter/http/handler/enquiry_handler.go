package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

type EnquiryHandler struct {
	enquiry *usecase.EnquiryUsecase
	logger  *logger.Logger
}

func NewEnquiryHandler(enquiry *usecase.EnquiryUsecase, log *logger.Logger) *EnquiryHandler {
	return &EnquiryHandler{enquiry: enquiry, logger: log.Named("enquiry_handler")}
}

func (h *EnquiryHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req enquiryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.enquiry.Send(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"),
		usecase.EnquiryInput{Name: req.Name, Phone: req.Phone, Message: req.Message})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, idResponse{ID: id})
}

func (h *EnquiryHandler) ListForAgent(w http.ResponseWriter, r *http.Request) {
	enquiries, err := h.enquiry.ListForAgent(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEnquiryList(enquiries))
}

func (h *EnquiryHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.enquiry.Feedback(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, idResponse{ID: id})
}
