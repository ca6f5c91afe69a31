package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLineNotFound indicates the referenced cart line does not exist.
var ErrLineNotFound = errors.New("cart line not found")

// Service encapsulates cart session operations.
type Service struct {
	Store *Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create starts an empty cart session.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c := Cart{
		ID:        uuid.NewString(),
		Lines:     []Line{},
		Discount:  Discount{Type: "none", Target: "base"},
		UpdatedAt: s.now(),
	}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart and extends its session.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	s.Store.Touch(ctx, id)
	return c, nil
}

// AddLine appends a new line and returns the updated cart.
func (s *Service) AddLine(ctx context.Context, cartID string, line Line) (Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		line.ID = uuid.NewString()
		c.Lines = append(c.Lines, line)
		return nil
	})
}

// UpdateLine replaces the fields of an existing line.
func (s *Service) UpdateLine(ctx context.Context, cartID, lineID string, line Line) (Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				line.ID = lineID
				c.Lines[i] = line
				return nil
			}
		}
		return fmt.Errorf("line %s: %w", lineID, ErrLineNotFound)
	})
}

// RemoveLine deletes a line.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) (Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("line %s: %w", lineID, ErrLineNotFound)
	})
}

// SetDiscount replaces the cart-level discount settings.
func (s *Service) SetDiscount(ctx context.Context, cartID string, d Discount) (Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		c.Discount = d
		return nil
	})
}

// ReplaceLines swaps the cart's contents, used when a template is applied.
func (s *Service) ReplaceLines(ctx context.Context, cartID string, lines []Line) (Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		replaced := make([]Line, 0, len(lines))
		for _, ln := range lines {
			if ln.ID == "" {
				ln.ID = uuid.NewString()
			}
			replaced = append(replaced, ln)
		}
		c.Lines = replaced
		return nil
	})
}

// Delete removes the cart session entirely.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.Delete(ctx, id)
}

func (s *Service) mutate(ctx context.Context, cartID string, fn func(*Cart) error) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return Cart{}, err
	}
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}
