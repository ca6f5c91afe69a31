package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mitti-app/backend-regi/internal/calc"
	"github.com/mitti-app/backend-regi/internal/cart"
	"github.com/mitti-app/backend-regi/internal/obs"
)

// ErrNotComputable is returned when a snapshot is requested for a
// shop/cart pair whose computation did not succeed. The Japanese note
// explaining why lives in the result itself.
var ErrNotComputable = errors.New("result not computable")

// ErrInvalidInput is returned when a template payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Service records computations and manages reusable templates.
type Service struct {
	Store   Store
	Calc    *calc.Service
	Carts   *cart.Service
	Limit   int
	Now     func() time.Time
	Metrics *obs.EngineMetrics
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) limit() int {
	if s != nil && s.Limit > 0 {
		return s.Limit
	}
	return 100
}

// Save computes the shop/cart pair and records the result. Failed
// computations are never persisted; the caller gets ErrNotComputable
// with the result's note attached.
func (s *Service) Save(ctx context.Context, shopID, cartID string) (Entry, error) {
	if s == nil || s.Store == nil || s.Calc == nil {
		return Entry{}, errors.New("history service not configured")
	}
	res, snap, err := s.Calc.Transaction(ctx, shopID, cartID)
	if err != nil {
		return Entry{}, err
	}
	if !res.OK {
		return Entry{}, fmt.Errorf("%s: %w", res.Note, ErrNotComputable)
	}
	e := Entry{
		ID:        uuid.NewString(),
		Shop:      snap.Shop,
		Lines:     snap.Cart.Lines,
		Discount:  snap.Cart.Discount,
		Result:    res,
		CreatedAt: s.now(),
	}
	if err := s.Store.InsertEntry(ctx, e); err != nil {
		return Entry{}, err
	}
	if s.Metrics != nil {
		s.Metrics.HistorySnaps.Inc()
	}
	return e, nil
}

// List returns the most recent entries, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("history service not configured")
	}
	return s.Store.ListEntries(ctx, s.limit())
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("history service not configured")
	}
	return s.Store.DeleteEntry(ctx, id)
}

// Clear removes every entry.
func (s *Service) Clear(ctx context.Context) error {
	if s == nil || s.Store == nil {
		return errors.New("history service not configured")
	}
	return s.Store.DeleteAllEntries(ctx)
}

// TemplateInput carries the editable template fields. Exactly one line
// source is used: a history entry id, or inline lines.
type TemplateInput struct {
	Name      string
	HistoryID string
	Lines     []cart.Line
}

// CreateTemplate builds a template from a history entry or from inline
// lines. New templates go to the end of the ordering.
func (s *Service) CreateTemplate(ctx context.Context, in TemplateInput) (Template, error) {
	if s == nil || s.Store == nil {
		return Template{}, errors.New("history service not configured")
	}
	if in.Name == "" {
		return Template{}, fmt.Errorf("template name required: %w", ErrInvalidInput)
	}
	t := Template{
		ID:        uuid.NewString(),
		Name:      in.Name,
		CreatedAt: s.now(),
	}
	switch {
	case in.HistoryID != "":
		entries, err := s.Store.ListEntries(ctx, s.limit())
		if err != nil {
			return Template{}, err
		}
		found := false
		for _, e := range entries {
			if e.ID == in.HistoryID {
				t.Shop = e.Shop
				t.Lines = e.Lines
				found = true
				break
			}
		}
		if !found {
			return Template{}, fmt.Errorf("history entry %s: %w", in.HistoryID, ErrNotFound)
		}
	case len(in.Lines) > 0:
		t.Lines = in.Lines
	default:
		return Template{}, fmt.Errorf("template needs a history entry or lines: %w", ErrInvalidInput)
	}

	existing, err := s.Store.ListTemplates(ctx)
	if err != nil {
		return Template{}, err
	}
	t.Position = len(existing)
	if err := s.Store.InsertTemplate(ctx, t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// ListTemplates returns templates in user order.
func (s *Service) ListTemplates(ctx context.Context) ([]Template, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("history service not configured")
	}
	return s.Store.ListTemplates(ctx)
}

// TemplateUpdate carries rename/reorder fields; nil means unchanged.
type TemplateUpdate struct {
	Name     *string
	Position *int
}

// UpdateTemplate renames or repositions a template.
func (s *Service) UpdateTemplate(ctx context.Context, id string, up TemplateUpdate) (Template, error) {
	if s == nil || s.Store == nil {
		return Template{}, errors.New("history service not configured")
	}
	t, err := s.Store.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if up.Name != nil {
		if *up.Name == "" {
			return Template{}, fmt.Errorf("template name required: %w", ErrInvalidInput)
		}
		t.Name = *up.Name
	}
	if up.Position != nil && *up.Position >= 0 {
		t.Position = *up.Position
	}
	if err := s.Store.UpdateTemplate(ctx, t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("history service not configured")
	}
	return s.Store.DeleteTemplate(ctx, id)
}

// ApplyTemplate loads a template's lines into a cart, replacing its
// current contents. Line ids are reissued so repeated applications never
// collide.
func (s *Service) ApplyTemplate(ctx context.Context, id, cartID string) (cart.Cart, error) {
	if s == nil || s.Store == nil || s.Carts == nil {
		return cart.Cart{}, errors.New("history service not configured")
	}
	t, err := s.Store.GetTemplate(ctx, id)
	if err != nil {
		return cart.Cart{}, err
	}
	lines := make([]cart.Line, len(t.Lines))
	copy(lines, t.Lines)
	for i := range lines {
		lines[i].ID = ""
	}
	return s.Carts.ReplaceLines(ctx, cartID, lines)
}
