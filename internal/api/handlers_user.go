package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/cardkeep/cardkeep/internal/api/respond"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/services"
)

type UserHandler struct {
	svc   *services.UserService
	stats *services.StatsService
}

func NewUserHandler(svc *services.UserService, stats *services.StatsService) *UserHandler {
	return &UserHandler{svc: svc, stats: stats}
}

// GetCurrentUser GET /api/users/current
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Current(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SaveCurrentUser PUT /api/users/current
func (h *UserHandler) SaveCurrentUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Save(r.Context(), &u)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetStatistics GET /api/statistics
func (h *UserHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	out, err := h.stats.Compute(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
