package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/cardkeep/cardkeep/internal/api/respond"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/services"
)

type TemplateHandler struct {
	svc *services.TemplateService
}

func NewTemplateHandler(svc *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// ListTemplates GET /api/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.Template{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"templates": out, "count": len(out)})
}

// GetTemplate GET /api/templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.Get(r.Context(), v["id"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// CreateTemplate POST /api/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t model.Template
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

// UpdateTemplate PUT /api/templates/{id}
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	var t model.Template
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

// DeleteTemplate DELETE /api/templates/{id}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), v["id"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InstantiateTemplate POST /api/templates/{id}/instantiate
func (h *TemplateHandler) InstantiateTemplate(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	var req struct {
		Title *string `json:"title,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "Invalid JSON")
			return
		}
	}
	out, err := h.svc.Instantiate(r.Context(), v["id"], req.Title)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}
