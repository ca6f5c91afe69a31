package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// Store keeps carts in Redis as JSON blobs with a sliding TTL.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func key(id string) string {
	return "cart:" + id
}

// Get loads a cart by id.
func (s *Store) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.Client == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	data, err := s.Client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save writes a cart and refreshes its TTL.
func (s *Store) Save(ctx context.Context, c Cart) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.Client.Set(ctx, key(c.ID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}

// Touch extends a cart's TTL without rewriting it.
func (s *Store) Touch(ctx context.Context, id string) {
	if s == nil || s.Client == nil {
		return
	}
	_ = s.Client.Expire(ctx, key(id), s.ttl()).Err()
}

// Delete removes a cart.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	removed, err := s.Client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}
