package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mitti-app/backend-regi/internal/tax"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Service encapsulates shop domain operations.
type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Input carries the editable shop fields. A preset key, when given,
// supplies the policy; an explicit policy wins over the preset.
type Input struct {
	Name   string
	Memo   string
	Preset string
	Policy *tax.Policy
	Rates  []tax.Rate
}

func (s *Service) build(in Input, existing *Shop) (Shop, error) {
	out := Shop{Name: in.Name, Memo: in.Memo}
	if existing != nil {
		out = *existing
		out.Name = in.Name
		out.Memo = in.Memo
	}
	if out.Name == "" {
		return Shop{}, fmt.Errorf("shop name required: %w", ErrInvalidInput)
	}
	switch {
	case in.Policy != nil:
		out.Policy = *in.Policy
	case in.Preset != "":
		preset, ok := PresetByKey(in.Preset)
		if !ok {
			return Shop{}, fmt.Errorf("unknown preset %q: %w", in.Preset, ErrInvalidInput)
		}
		out.Policy = preset.Policy
	}
	if in.Rates != nil {
		out.Rates = in.Rates
	}
	return Normalize(out), nil
}

// Create registers a new shop.
func (s *Service) Create(ctx context.Context, in Input) (Shop, error) {
	if s == nil || s.Store == nil {
		return Shop{}, errors.New("shop service not configured")
	}
	built, err := s.build(in, nil)
	if err != nil {
		return Shop{}, err
	}
	built.ID = uuid.NewString()
	built.CreatedAt = s.now()
	built.UpdatedAt = built.CreatedAt
	if err := s.Store.Create(ctx, built); err != nil {
		return Shop{}, err
	}
	return built, nil
}

// Get loads one shop.
func (s *Service) Get(ctx context.Context, id string) (Shop, error) {
	if s == nil || s.Store == nil {
		return Shop{}, errors.New("shop service not configured")
	}
	return s.Store.Get(ctx, id)
}

// List returns all registered shops.
func (s *Service) List(ctx context.Context) ([]Shop, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("shop service not configured")
	}
	return s.Store.List(ctx)
}

// Update edits an existing shop.
func (s *Service) Update(ctx context.Context, id string, in Input) (Shop, error) {
	if s == nil || s.Store == nil {
		return Shop{}, errors.New("shop service not configured")
	}
	existing, err := s.Store.Get(ctx, id)
	if err != nil {
		return Shop{}, err
	}
	built, err := s.build(in, &existing)
	if err != nil {
		return Shop{}, err
	}
	built.UpdatedAt = s.now()
	if err := s.Store.Update(ctx, built); err != nil {
		return Shop{}, err
	}
	return built, nil
}

// Delete removes a shop. Shops are only ever deleted by explicit user action.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("shop service not configured")
	}
	return s.Store.Delete(ctx, id)
}
