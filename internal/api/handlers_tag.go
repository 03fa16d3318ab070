package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/cardkeep/cardkeep/internal/api/respond"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/services"
)

type TagHandler struct {
	svc *services.TagService
}

func NewTagHandler(svc *services.TagService) *TagHandler {
	return &TagHandler{svc: svc}
}

// ListTags GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.Tag{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tags": out, "count": len(out)})
}

// GetTag GET /api/tags/{id}
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.Get(r.Context(), v["id"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// CreateTag POST /api/tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var t model.Tag
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), &t)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateTag PUT /api/tags/{id}
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	var t model.Tag
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	t.ID = v["id"]
	out, err := h.svc.Update(r.Context(), &t)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteTag DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), v["id"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
