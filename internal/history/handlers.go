package history

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mitti-app/backend-regi/internal/cart"
	"github.com/mitti-app/backend-regi/internal/common"
)

// Handler wires history and template operations to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type savePayload struct {
	ShopID string `json:"shopId" validate:"required"`
	CartID string `json:"cartId" validate:"required"`
}

// Save snapshots the current computation for a shop and cart.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var payload savePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
			return
		}
	}
	saved, err := h.Svc.Save(r.Context(), payload.ShopID, payload.CartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, saved)
}

// List returns recent entries, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	common.Data(w, http.StatusOK, entries)
}

// Delete removes one entry.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every entry.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type templatePayload struct {
	Name      string      `json:"name" validate:"required,max=100"`
	HistoryID string      `json:"historyId"`
	Lines     []cart.Line `json:"lines"`
}

// CreateTemplate builds a template from a history entry or inline lines.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
			return
		}
	}
	created, err := h.Svc.CreateTemplate(r.Context(), TemplateInput{
		Name:      payload.Name,
		HistoryID: payload.HistoryID,
		Lines:     payload.Lines,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// ListTemplates returns templates in user order.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Svc.ListTemplates(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if templates == nil {
		templates = []Template{}
	}
	common.Data(w, http.StatusOK, templates)
}

type templateUpdatePayload struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

// UpdateTemplate renames or repositions a template.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templateUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	updated, err := h.Svc.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), TemplateUpdate{
		Name:     payload.Name,
		Position: payload.Position,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

// DeleteTemplate removes a template.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyPayload struct {
	CartID string `json:"cartId" validate:"required"`
}

// ApplyTemplate loads a template's lines into a cart.
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var payload applyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
			return
		}
	}
	updated, err := h.Svc.ApplyTemplate(r.Context(), chi.URLParam(r, "id"), payload.CartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "record not found", nil)
	case errors.Is(err, cart.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrNotComputable):
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_COMPUTABLE", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process request", nil)
	}
}
