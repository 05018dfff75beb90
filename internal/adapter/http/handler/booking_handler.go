package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// BookingHandler serves reservations, payments and sale closing.
type BookingHandler struct {
	reservation *usecase.ReservationUsecase
	settlement  *usecase.SettlementUsecase
	query       *usecase.QueryUsecase
	logger      *logger.Logger
}

func NewBookingHandler(reservation *usecase.ReservationUsecase, settlement *usecase.SettlementUsecase, query *usecase.QueryUsecase, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		reservation: reservation,
		settlement:  settlement,
		query:       query,
		logger:      log.Named("booking_handler"),
	}
}

func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.reservation.Reserve(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"),
		domain.BuyerInput{Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, idResponse{ID: id})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.reservation.Cancel(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) ListHeld(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.query.ListHeldBookings(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toBookingList(bookings))
}

func (h *BookingHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.settlement.SubmitPayment(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, idResponse{ID: id})
}

func (h *BookingHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.settlement.VerifyPayment(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) CloseSale(w http.ResponseWriter, r *http.Request) {
	if err := h.settlement.CloseSale(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
