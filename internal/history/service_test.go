package history

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mitti-app/backend-regi/internal/calc"
	"github.com/mitti-app/backend-regi/internal/cart"
	"github.com/mitti-app/backend-regi/internal/shop"
	"github.com/mitti-app/backend-regi/internal/tax"
)

type memStore struct {
	entries   []Entry
	templates map[string]Template
}

func newMemStore() *memStore {
	return &memStore{templates: map[string]Template{}}
}

func (m *memStore) InsertEntry(_ context.Context, e Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) ListEntries(_ context.Context, limit int) ([]Entry, error) {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteEntry(_ context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteAllEntries(_ context.Context) error {
	m.entries = nil
	return nil
}

func (m *memStore) InsertTemplate(_ context.Context, t Template) error {
	m.templates[t.ID] = t
	return nil
}

func (m *memStore) GetTemplate(_ context.Context, id string) (Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	return t, nil
}

func (m *memStore) ListTemplates(_ context.Context) ([]Template, error) {
	out := make([]Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) UpdateTemplate(_ context.Context, t Template) error {
	if _, ok := m.templates[t.ID]; !ok {
		return ErrNotFound
	}
	m.templates[t.ID] = t
	return nil
}

func (m *memStore) DeleteTemplate(_ context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

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

func (m *memShopStore) List(_ context.Context) ([]shop.Shop, error) { return nil, nil }

func (m *memShopStore) Update(_ context.Context, s shop.Shop) error {
	m.shops[s.ID] = s
	return nil
}

func (m *memShopStore) Delete(_ context.Context, id string) error {
	delete(m.shops, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *cart.Service, string, string) {
	t.Helper()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	shops := &shop.Service{Store: &memShopStore{shops: map[string]shop.Shop{}}}
	carts := &cart.Service{Store: &cart.Store{Client: client, TTL: time.Hour}}

	created, err := shops.Create(ctx, shop.Input{
		Name: "ドラッグみっち",
		Policy: &tax.Policy{
			Aggregation: tax.AggregateItem,
			Rounding:    tax.RoundFloor,
			Unit:        1,
		},
	})
	require.NoError(t, err)

	c, err := carts.Create(ctx)
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, c.ID, cart.Line{Name: "シャンプー", Price: "498", Qty: "1", Rate: 0.10})
	require.NoError(t, err)

	svc := &Service{
		Store: newMemStore(),
		Calc:  &calc.Service{Shops: shops, Carts: carts},
		Carts: carts,
		Limit: 50,
	}
	return svc, carts, created.ID, c.ID
}

func TestSaveAndList(t *testing.T) {
	svc, _, shopID, cartID := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, shopID, cartID)
	require.NoError(t, err)
	require.True(t, saved.Result.OK)
	require.Equal(t, tax.Money(547), saved.Result.PayTotal)
	require.Len(t, saved.Lines, 1)
	require.Equal(t, "シャンプー", saved.Lines[0].Name)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, saved.ID, entries[0].ID)
}

func TestSaveRejectsFailedComputation(t *testing.T) {
	svc, _, _, cartID := newTestService(t)

	_, err := svc.Save(context.Background(), "no-such-shop", cartID)
	require.ErrorIs(t, err, ErrNotComputable)
	require.Contains(t, err.Error(), "店が未登録")
}

func TestDeleteAndClear(t *testing.T) {
	svc, _, shopID, cartID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, shopID, cartID)
	require.NoError(t, err)
	_, err = svc.Save(ctx, shopID, cartID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.ID))
	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, svc.Clear(ctx))
	entries, err = svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.ErrorIs(t, svc.Delete(ctx, first.ID), ErrNotFound)
}

func TestTemplateFromHistory(t *testing.T) {
	svc, _, shopID, cartID := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, shopID, cartID)
	require.NoError(t, err)

	tpl, err := svc.CreateTemplate(ctx, TemplateInput{Name: "いつもの買い物", HistoryID: saved.ID})
	require.NoError(t, err)
	require.Equal(t, saved.Lines, tpl.Lines)
	require.Equal(t, saved.Shop.ID, tpl.Shop.ID)
	require.Equal(t, 0, tpl.Position)

	second, err := svc.CreateTemplate(ctx, TemplateInput{
		Name:  "別の買い物",
		Lines: []cart.Line{{Name: "パン", Price: "158", Qty: "2", Rate: 0.08}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Position)
}

func TestTemplateValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTemplate(ctx, TemplateInput{Name: ""})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateTemplate(ctx, TemplateInput{Name: "空っぽ"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateTemplate(ctx, TemplateInput{Name: "迷子", HistoryID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTemplateRenameAndReorder(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateTemplate(ctx, TemplateInput{
		Name:  "A",
		Lines: []cart.Line{{Name: "牛乳", Price: "218", Qty: "1", Rate: 0.08}},
	})
	require.NoError(t, err)
	b, err := svc.CreateTemplate(ctx, TemplateInput{
		Name:  "B",
		Lines: []cart.Line{{Name: "卵", Price: "258", Qty: "1", Rate: 0.08}},
	})
	require.NoError(t, err)

	name := "B改"
	pos := 0
	_, err = svc.UpdateTemplate(ctx, b.ID, TemplateUpdate{Name: &name, Position: &pos})
	require.NoError(t, err)
	posA := 1
	_, err = svc.UpdateTemplate(ctx, a.ID, TemplateUpdate{Position: &posA})
	require.NoError(t, err)

	templates, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	require.Equal(t, "B改", templates[0].Name)
	require.Equal(t, "A", templates[1].Name)
}

func TestApplyTemplateReplacesCart(t *testing.T) {
	svc, carts, shopID, cartID := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, shopID, cartID)
	require.NoError(t, err)
	tpl, err := svc.CreateTemplate(ctx, TemplateInput{Name: "定番", HistoryID: saved.ID})
	require.NoError(t, err)

	fresh, err := carts.Create(ctx)
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, fresh.ID, cart.Line{Name: "消される品", Price: "100", Qty: "1", Rate: 0.10})
	require.NoError(t, err)

	applied, err := svc.ApplyTemplate(ctx, tpl.ID, fresh.ID)
	require.NoError(t, err)
	require.Len(t, applied.Lines, 1)
	require.Equal(t, "シャンプー", applied.Lines[0].Name)
	require.NotEqual(t, saved.Lines[0].ID, applied.Lines[0].ID)

	_, err = svc.ApplyTemplate(ctx, tpl.ID, "no-such-cart")
	require.ErrorIs(t, err, cart.ErrNotFound)
}
