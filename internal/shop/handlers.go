package shop

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mitti-app/backend-regi/internal/common"
	"github.com/mitti-app/backend-regi/internal/tax"
)

// Handler wires the shop service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type shopPayload struct {
	Name   string      `json:"name" validate:"required,max=100"`
	Memo   string      `json:"memo" validate:"max=500"`
	Preset string      `json:"preset" validate:"omitempty,oneof=item_floor rate_group_round"`
	Policy *tax.Policy `json:"policy"`
	Rates  []tax.Rate  `json:"rates"`
}

func (h *Handler) decode(r *http.Request, w http.ResponseWriter) (shopPayload, bool) {
	var payload shopPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return payload, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
			return payload, false
		}
	}
	return payload, true
}

func (payload shopPayload) input() Input {
	return Input{
		Name:   payload.Name,
		Memo:   payload.Memo,
		Preset: payload.Preset,
		Policy: payload.Policy,
		Rates:  payload.Rates,
	}
}

// Create registers a shop.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(r, w)
	if !ok {
		return
	}
	created, err := h.Svc.Create(r.Context(), payload.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// List returns all shops.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if shops == nil {
		shops = []Shop{}
	}
	common.Data(w, http.StatusOK, shops)
}

// Get returns one shop.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, found)
}

// Update edits one shop.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(r, w)
	if !ok {
		return
	}
	updated, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), payload.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

// Delete removes one shop.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPresets returns the canonical policy presets.
func (h *Handler) ListPresets(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, Presets())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "shop not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process shop", nil)
	}
}
