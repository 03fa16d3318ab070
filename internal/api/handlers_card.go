package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	respond "github.com/cardkeep/cardkeep/internal/api/respond"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/services"
)

type CardHandler struct {
	svc *services.CardService
}

func NewCardHandler(svc *services.CardService) *CardHandler {
	return &CardHandler{svc: svc}
}

// ListCards GET /api/cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.Card{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cards": out, "count": len(out)})
}

// SearchCards GET /api/cards/search
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	f, s, err := parseSearchParams(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.Search(r.Context(), f, s)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.Card{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cards": out, "count": len(out)})
}

// parseSearchParams decodes q/types/tags/favorite/template/sort query
// parameters. Sort keys carry a "-" prefix for descending order.
func parseSearchParams(r *http.Request) (model.CardFilter, model.CardSort, error) {
	var f model.CardFilter
	var s model.CardSort
	q := r.URL.Query()

	f.Query = q.Get("q")
	if raw := q.Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			ct, err := model.ParseCardType(strings.TrimSpace(part))
			if err != nil {
				return f, s, err
			}
			f.Types = append(f.Types, ct)
		}
	}
	if raw := q.Get("tags"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Tags = append(f.Tags, part)
			}
		}
	}
	if raw := q.Get("favorite"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, s, model.ErrValidation
		}
		f.Favorite = &b
	}
	if raw := q.Get("template"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, s, model.ErrValidation
		}
		f.Template = &b
	}
	if raw := q.Get("sort"); raw != "" {
		if strings.HasPrefix(raw, "-") {
			s.Desc = true
			raw = raw[1:]
		}
		switch model.SortKey(raw) {
		case model.SortByCreated, model.SortByUpdated, model.SortByTitle, model.SortByReviewed:
			s.Key = model.SortKey(raw)
		default:
			return f, s, model.ErrValidation
		}
	}
	return f, s, nil
}

// GetCard GET /api/cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.Get(r.Context(), v["id"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// CreateCard POST /api/cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var c model.Card
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), &c)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateCard PUT /api/cards/{id}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	var c model.Card
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	c.ID = v["id"]
	out, err := h.svc.Update(r.Context(), &c)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteCard DELETE /api/cards/{id}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	if err := h.svc.Delete(r.Context(), v["id"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite POST /api/cards/{id}/favorite
func (h *CardHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.ToggleFavorite(r.Context(), v["id"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
