package catalog

import "context"

// StaticSource serves the built-in digital-goods catalog. Not a real
// index; swap the Source for one when the catalog grows a backend.
type StaticSource struct {
	products []Product
}

func NewStaticSource() *StaticSource {
	return &StaticSource{products: defaultProducts}
}

func (s *StaticSource) AllProducts(ctx context.Context) ([]Product, error) {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *StaticSource) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var cats []string
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	return cats, nil
}

func (s *StaticSource) ProductsByCategory(ctx context.Context, name string) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if p.Category == name {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *StaticSource) ProductByID(ctx context.Context, id string) (*Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

var _ Source = (*StaticSource)(nil)

var defaultProducts = []Product{
	{
		ID:          "prod_ebook_go",
		Name:        "Practical Go Patterns (eBook)",
		Description: "A hands-on guide to structuring production Go services.",
		PriceCents:  49900,
		ImageURL:    "https://placehold.co/600x400",
		Category:    "Ebooks",
	},
	{
		ID:          "prod_course_sql",
		Name:        "SQL for Backend Engineers (Video Course)",
		Description: "Schema design, indexing and query tuning from scratch.",
		PriceCents:  129900,
		ImageURL:    "https://placehold.co/600x400",
		Category:    "Courses",
	},
	{
		ID:          "prod_course_k8s",
		Name:        "Kubernetes in Production (Video Course)",
		Description: "Deploying, scaling and debugging real workloads.",
		PriceCents:  149900,
		ImageURL:    "https://placehold.co/600x400",
		Category:    "Courses",
	},
	{
		ID:          "prod_tpl_invoice",
		Name:        "Invoice Template Pack",
		Description: "Printable invoice and receipt templates for freelancers.",
		PriceCents:  19900,
		ImageURL:    "https://placehold.co/600x400",
		Category:    "Templates",
	},
	{
		ID:          "prod_icons_flat",
		Name:        "Flat Icon Bundle (500 icons)",
		Description: "SVG + PNG icon set licensed for commercial use.",
		PriceCents:  29900,
		ImageURL:    "https://placehold.co/600x400",
		Category:    "Design Assets",
	},
	{
		ID:          "prod_theme_store",
		Name:        "Storefront Website Theme",
		Description: "Responsive e-commerce theme with checkout pages.",
		PriceCents:  89900,
		ImageURL:    "https://placehold.co/600x400",
		Category:    "Templates",
	},
}
