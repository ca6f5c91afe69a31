package history

import (
	"time"

	"github.com/mitti-app/backend-regi/internal/cart"
	"github.com/mitti-app/backend-regi/internal/shop"
	"github.com/mitti-app/backend-regi/internal/tax"
)

// Entry is a saved computation. It snapshots the shop settings and cart
// contents at save time so later shop edits never rewrite history.
type Entry struct {
	ID        string        `json:"id"`
	Shop      shop.Shop     `json:"shop"`
	Lines     []cart.Line   `json:"lines"`
	Discount  cart.Discount `json:"discount"`
	Result    tax.Result    `json:"result"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Template is a reusable set of cart lines, typically a weekly shopping
// run at one shop. Position drives the user's manual ordering.
type Template struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Shop      shop.Shop   `json:"shop"`
	Lines     []cart.Line `json:"lines"`
	Position  int         `json:"position"`
	CreatedAt time.Time   `json:"createdAt"`
}
