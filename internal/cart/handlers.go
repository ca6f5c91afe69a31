package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mitti-app/backend-regi/internal/common"
)

// Handler wires cart sessions to HTTP.
type Handler struct {
	Svc *Service
}

// Create starts a cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, c)
}

// Get returns cart contents.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// Delete removes the cart session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLine appends a line to the cart.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var line Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	c, err := h.Svc.AddLine(r.Context(), chi.URLParam(r, "id"), line)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// UpdateLine replaces a line.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var line Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	c, err := h.Svc.UpdateLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"), line)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// RemoveLine deletes a line.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

// SetDiscount replaces the cart-level discount settings.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var d Discount
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	c, err := h.Svc.SetDiscount(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, c)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process cart", nil)
	}
}
