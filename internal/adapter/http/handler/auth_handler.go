package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// AuthHandler serves registration, login and agent administration.
type AuthHandler struct {
	identity *identity.Service
	logger   *logger.Logger
}

func NewAuthHandler(svc *identity.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{identity: svc, logger: log.Named("auth_handler")}
}

func (h *AuthHandler) RegisterSeller(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	acc, err := h.identity.RegisterSeller(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toAccountResponse(acc))
}

// RegisterAgent creates an agent that cannot log in until approved.
func (h *AuthHandler) RegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	acc, err := h.identity.RegisterAgent(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toAccountResponse(acc))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	token, acc, err := h.identity.Login(r.Context(), role, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, loginResponse{Token: token, Account: toAccountResponse(acc)})
}

func (h *AuthHandler) AddAgent(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	acc, err := h.identity.AddAgent(r.Context(), middleware.ActorFromContext(r.Context()), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toAccountResponse(acc))
}

func (h *AuthHandler) ApproveAgent(w http.ResponseWriter, r *http.Request) {
	h.setAgentStatus(w, r, identity.StatusApproved)
}

func (h *AuthHandler) RejectAgent(w http.ResponseWriter, r *http.Request) {
	h.setAgentStatus(w, r, identity.StatusRejected)
}

func (h *AuthHandler) setAgentStatus(w http.ResponseWriter, r *http.Request, status identity.AccountStatus) {
	id := chi.URLParam(r, "id")
	if err := h.identity.SetAgentStatus(r.Context(), middleware.ActorFromContext(r.Context()), id, status); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	status := identity.AccountStatus(r.URL.Query().Get("status"))
	agents, err := h.identity.ListAgents(r.Context(), middleware.ActorFromContext(r.Context()), status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]accountResponse, 0, len(agents))
	for _, acc := range agents {
		out = append(out, toAccountResponse(acc))
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}
