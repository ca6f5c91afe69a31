package calc

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mitti-app/backend-regi/internal/common"
	"github.com/mitti-app/backend-regi/internal/tax"
)

// Handler exposes the computation endpoints.
type Handler struct {
	Svc *Service
}

type transactionPayload struct {
	ShopID string `json:"shopId"`
	CartID string `json:"cartId"`
}

type verifyPayload struct {
	ShopID       string `json:"shopId"`
	CartID       string `json:"cartId"`
	ReceiptTotal string `json:"receiptTotal"`
}

// Transaction computes the full receipt for a shop and cart.
func (h *Handler) Transaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body", nil)
		return
	}
	res, _, err := h.Svc.Transaction(r.Context(), p.ShopID, p.CartID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, res)
}

// Verify searches every policy configuration for ones that reproduce a
// receipt total. A total the user typed that does not parse as a whole
// yen amount is treated as out of range, which yields an empty result.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var p verifyPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body", nil)
		return
	}
	res, err := h.Svc.Verify(r.Context(), p.ShopID, p.CartID, parseReceiptTotal(p.ReceiptTotal))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, res)
}

// Shortfall reports the extra spend needed to reach ?target= yen.
func (h *Handler) Shortfall(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := strconv.ParseInt(strings.TrimSpace(q.Get("target")), 10, 64)
	if err != nil || target <= 0 {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_TARGET", "target must be a positive whole yen amount", nil)
		return
	}
	res, err := h.Svc.Shortfall(r.Context(), q.Get("shopId"), q.Get("cartId"), tax.Money(target))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, res)
}

func parseReceiptTotal(raw string) tax.Money {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v < 0 {
		return -1
	}
	return tax.Money(v)
}
