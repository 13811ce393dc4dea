package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
)

// SnapshotStore persists full cart snapshots keyed by cart id.
// Load returns (nil, nil) when no snapshot exists.
type SnapshotStore interface {
	Load(ctx context.Context, cartID string) ([]byte, error)
	Save(ctx context.Context, cartID string, snapshot []byte) error
	Delete(ctx context.Context, cartID string) error
}

// Service owns cart state for all sessions behind an injected
// persistence port. Every mutation writes the full snapshot back.
type Service struct {
	store SnapshotStore
	log   *slog.Logger
}

func NewService(store SnapshotStore) *Service {
	return &Service{store: store, log: logging.New("cart")}
}

type snapshot struct {
	Items []domain.LineItem `json:"items"`
}

// Get restores the cart for cartID. A snapshot that fails to parse or
// fails its shape check is discarded silently; the caller gets an empty
// cart, never an error, for corrupt state.
func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	raw, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	if raw == nil {
		return &domain.Cart{}, nil
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil || !wellFormed(snap.Items) {
		s.log.Warn("discarding unreadable cart snapshot", "cart_id", cartID)
		_ = s.store.Delete(ctx, cartID)
		return &domain.Cart{}, nil
	}
	return &domain.Cart{Items: snap.Items}, nil
}

func (s *Service) AddItem(ctx context.Context, cartID, productID, name string, unitPriceCents int64, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(c *domain.Cart) {
		c.AddItem(productID, name, unitPriceCents, quantity)
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(c *domain.Cart) {
		c.UpdateQuantity(productID, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(c *domain.Cart) {
		c.RemoveItem(productID)
	})
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := s.store.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart %s: %w", cartID, err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, cartID string, fn func(*domain.Cart)) (*domain.Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	fn(c)

	raw, err := json.Marshal(snapshot{Items: c.Items})
	if err != nil {
		return nil, fmt.Errorf("encode cart %s: %w", cartID, err)
	}
	if err := s.store.Save(ctx, cartID, raw); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cartID, err)
	}
	return c, nil
}

// wellFormed is the shape check: every record must look like a LineItem.
// One bad record discards the whole snapshot.
func wellFormed(items []domain.LineItem) bool {
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 || it.UnitPriceCents < 0 {
			return false
		}
	}
	return true
}
