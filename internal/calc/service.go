package calc

import (
	"context"
	"errors"
	"strconv"

	"github.com/mitti-app/backend-regi/internal/cart"
	"github.com/mitti-app/backend-regi/internal/obs"
	"github.com/mitti-app/backend-regi/internal/shop"
	"github.com/mitti-app/backend-regi/internal/tax"
)

// Service runs engine computations over stored shops and session carts.
// A missing shop or cart is not an error here: the engine represents
// both as ok=false results so callers can render them directly.
type Service struct {
	Shops   *shop.Service
	Carts   *cart.Service
	Metrics *obs.EngineMetrics
}

// Snapshot is everything a computation was based on, used by callers
// that persist results.
type Snapshot struct {
	Shop     shop.Shop
	HasShop  bool
	Cart     cart.Cart
	HasCart  bool
	Lines    []tax.Line
	Discount tax.CartDiscount
}

func (s *Service) load(ctx context.Context, shopID, cartID string) (Snapshot, error) {
	var snap Snapshot
	if s == nil || s.Shops == nil || s.Carts == nil {
		return snap, errors.New("calc service not configured")
	}
	found, err := s.Shops.Get(ctx, shopID)
	switch {
	case err == nil:
		snap.Shop = found
		snap.HasShop = true
	case errors.Is(err, shop.ErrNotFound):
	default:
		return snap, err
	}
	loaded, err := s.Carts.Get(ctx, cartID)
	switch {
	case err == nil:
		snap.Cart = loaded
		snap.HasCart = true
		snap.Lines = loaded.TaxLines()
		snap.Discount = loaded.TaxDiscount()
	case errors.Is(err, cart.ErrNotFound):
	default:
		return snap, err
	}
	return snap, nil
}

func (snap Snapshot) profile() *tax.Profile {
	if !snap.HasShop {
		return nil
	}
	return snap.Shop.Profile()
}

// Transaction computes the receipt-comparable result for a shop and cart.
func (s *Service) Transaction(ctx context.Context, shopID, cartID string) (tax.Result, Snapshot, error) {
	snap, err := s.load(ctx, shopID, cartID)
	if err != nil {
		return tax.Result{}, snap, err
	}
	res := tax.Compute(snap.profile(), snap.Lines, snap.Discount)
	if s.Metrics != nil {
		agg := "none"
		if snap.HasShop {
			agg = string(tax.NormalizePolicy(snap.Shop.Policy).Aggregation)
		}
		s.Metrics.Transactions.WithLabelValues(agg, strconv.FormatBool(res.OK)).Inc()
	}
	return res, snap, nil
}

// Verify runs the exhaustive policy search against a receipt total.
func (s *Service) Verify(ctx context.Context, shopID, cartID string, receiptTotal tax.Money) (tax.Suggestion, error) {
	snap, err := s.load(ctx, shopID, cartID)
	if err != nil {
		return tax.Suggestion{}, err
	}
	got := tax.Suggest(snap.profile(), snap.Lines, snap.Discount, receiptTotal)
	if s.Metrics != nil {
		s.Metrics.Verifications.Inc()
		s.Metrics.VerifyMatches.Observe(float64(len(got.Matches)))
	}
	return got, nil
}

// Shortfall reports the extra spend needed to reach a target pay amount.
func (s *Service) Shortfall(ctx context.Context, shopID, cartID string, target tax.Money) (tax.ShortfallResult, error) {
	snap, err := s.load(ctx, shopID, cartID)
	if err != nil {
		return tax.ShortfallResult{}, err
	}
	res := tax.Compute(snap.profile(), snap.Lines, snap.Discount)
	if !res.OK {
		return tax.ShortfallResult{}, nil
	}
	return tax.ShortfallToTarget(target, res.PayTotal, snap.Shop.Rates), nil
}
