package catalog

import "context"

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
}

// Source is the read-only catalog the storefront consumes. ProductByID
// returns (nil, nil) for an unknown id.
type Source interface {
	AllProducts(ctx context.Context) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	ProductsByCategory(ctx context.Context, name string) ([]Product, error)
	ProductByID(ctx context.Context, id string) (*Product, error)
}
