package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
)

// DashboardHandler serves the per-role statistics.
type DashboardHandler struct {
	query  *usecase.QueryUsecase
	logger *logger.Logger
}

func NewDashboardHandler(query *usecase.QueryUsecase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{query: query, logger: log.Named("dashboard_handler")}
}

func (h *DashboardHandler) SellerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.query.SellerStats(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

func (h *DashboardHandler) AgentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.query.AgentStats(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

func (h *DashboardHandler) AdminReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.query.AdminReport(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, report)
}
