package calc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mitti-app/backend-regi/internal/cart"
	"github.com/mitti-app/backend-regi/internal/shop"
	"github.com/mitti-app/backend-regi/internal/tax"
)

type memShopStore struct {
	shops map[string]shop.Shop
}

func (m *memShopStore) Create(_ context.Context, s shop.Shop) error {
	m.shops[s.ID] = s
	return nil
}

func (m *memShopStore) Get(_ context.Context, id string) (shop.Shop, error) {
	s, ok := m.shops[id]
	if !ok {
		return shop.Shop{}, shop.ErrNotFound
	}
	return s, nil
}

func (m *memShopStore) List(_ context.Context) ([]shop.Shop, error) {
	out := make([]shop.Shop, 0, len(m.shops))
	for _, s := range m.shops {
		out = append(out, s)
	}
	return out, nil
}

func (m *memShopStore) Update(_ context.Context, s shop.Shop) error {
	if _, ok := m.shops[s.ID]; !ok {
		return shop.ErrNotFound
	}
	m.shops[s.ID] = s
	return nil
}

func (m *memShopStore) Delete(_ context.Context, id string) error {
	if _, ok := m.shops[id]; !ok {
		return shop.ErrNotFound
	}
	delete(m.shops, id)
	return nil
}

func newTestEnv(t *testing.T) (*Handler, *shop.Service, *cart.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	shops := &shop.Service{
		Store: &memShopStore{shops: map[string]shop.Shop{}},
		Now:   func() time.Time { return time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC) },
	}
	carts := &cart.Service{Store: &cart.Store{Client: client, TTL: time.Hour}}
	h := &Handler{Svc: &Service{Shops: shops, Carts: carts}}
	return h, shops, carts
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/calc/transaction", h.Transaction)
	r.Post("/api/v1/calc/verify", h.Verify)
	r.Get("/api/v1/calc/shortfall", h.Shortfall)
	return r
}

func seedShopAndCart(t *testing.T, shops *shop.Service, carts *cart.Service, policy tax.Policy) (string, string) {
	t.Helper()
	ctx := context.Background()

	created, err := shops.Create(ctx, shop.Input{Name: "スーパーみっち", Policy: &policy, Rates: tax.LegalRates()})
	require.NoError(t, err)

	c, err := carts.Create(ctx)
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, c.ID, cart.Line{Name: "惣菜", Price: "298", Qty: "1", Rate: 0.08})
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, c.ID, cart.Line{Name: "菓子", Price: "198", Qty: "1", Rate: 0.08})
	require.NoError(t, err)

	return created.ID, c.ID
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestTransactionEndpoint(t *testing.T) {
	h, shops, carts := newTestEnv(t)
	router := newRouter(h)
	shopID, cartID := seedShopAndCart(t, shops, carts, tax.Policy{
		Aggregation: tax.AggregateItem,
		Rounding:    tax.RoundFloor,
		Unit:        1,
	})

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/v1/calc/transaction",
		`{"shopId":"`+shopID+`","cartId":"`+cartID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res tax.Result
	require.NoError(t, json.Unmarshal(envelope["data"], &res))
	require.True(t, res.OK)
	require.Equal(t, tax.Money(496), res.Subtotal)
	require.Equal(t, tax.Money(534), res.PayTotal)
}

func TestTransactionMissingShop(t *testing.T) {
	h, shops, carts := newTestEnv(t)
	router := newRouter(h)
	_, cartID := seedShopAndCart(t, shops, carts, tax.Policy{})

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/v1/calc/transaction",
		`{"shopId":"nope","cartId":"`+cartID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res tax.Result
	require.NoError(t, json.Unmarshal(envelope["data"], &res))
	require.False(t, res.OK)
	require.Equal(t, "店が未登録のため、計算できません。", res.Note)
}

func TestTransactionMissingCart(t *testing.T) {
	h, shops, carts := newTestEnv(t)
	router := newRouter(h)
	shopID, _ := seedShopAndCart(t, shops, carts, tax.Policy{})

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/v1/calc/transaction",
		`{"shopId":"`+shopID+`","cartId":"missing"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res tax.Result
	require.NoError(t, json.Unmarshal(envelope["data"], &res))
	require.False(t, res.OK)
	require.Equal(t, "商品が入力されていないため、計算できません。", res.Note)
}

func TestVerifyEndpoint(t *testing.T) {
	h, shops, carts := newTestEnv(t)
	router := newRouter(h)
	shopID, cartID := seedShopAndCart(t, shops, carts, tax.Policy{
		Aggregation: tax.AggregateItem,
		Rounding:    tax.RoundFloor,
		Unit:        1,
	})

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/v1/calc/verify",
		`{"shopId":"`+shopID+`","cartId":"`+cartID+`","receiptTotal":"535"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res tax.Suggestion
	require.NoError(t, json.Unmarshal(envelope["data"], &res))
	require.NotEmpty(t, res.Matches)
	for _, m := range res.Matches {
		require.Equal(t, tax.Money(535), m.PayTotal)
	}
	require.Len(t, res.Closest, tax.MaxSuggestions)
}

func TestVerifyUnparsableTotal(t *testing.T) {
	h, shops, carts := newTestEnv(t)
	router := newRouter(h)
	shopID, cartID := seedShopAndCart(t, shops, carts, tax.Policy{})

	rec, envelope := doJSON(t, router, http.MethodPost, "/api/v1/calc/verify",
		`{"shopId":"`+shopID+`","cartId":"`+cartID+`","receiptTotal":"五三五"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res tax.Suggestion
	require.NoError(t, json.Unmarshal(envelope["data"], &res))
	require.Empty(t, res.Matches)
	require.Empty(t, res.Closest)
}

func TestShortfallEndpoint(t *testing.T) {
	h, shops, carts := newTestEnv(t)
	router := newRouter(h)
	shopID, cartID := seedShopAndCart(t, shops, carts, tax.Policy{
		Aggregation: tax.AggregateItem,
		Rounding:    tax.RoundFloor,
		Unit:        1,
	})

	// Pay total is 534; a 642 yen target leaves a 108 yen gap.
	rec, envelope := doJSON(t, router, http.MethodGet,
		"/api/v1/calc/shortfall?shopId="+shopID+"&cartId="+cartID+"&target=642", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res tax.ShortfallResult
	require.NoError(t, json.Unmarshal(envelope["data"], &res))
	require.True(t, res.OK)
	require.Equal(t, tax.Money(108), res.Deficit)
	require.Len(t, res.ByRate, 2)
	require.Equal(t, tax.Money(100), res.ByRate[0].Base)
	require.Equal(t, tax.Money(99), res.ByRate[1].Base)
}

func TestShortfallInvalidTarget(t *testing.T) {
	h, _, _ := newTestEnv(t)
	router := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calc/shortfall?target=-5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
