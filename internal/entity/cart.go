package domain

// LineItem is one product + quantity entry in a cart. At most one
// LineItem per product id; quantity is always >= 1.
type LineItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// Cart holds the line items of one session. Totals are derived on every
// read, never cached.
type Cart struct {
	Items []LineItem `json:"items"`
}

// AddItem merges into an existing line item or appends a new one.
// Quantity is coerced to at least 1.
func (c *Cart) AddItem(productID, name string, unitPriceCents int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, LineItem{
		ProductID:      productID,
		Name:           name,
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
	})
}

// RemoveItem deletes the line item if present; no-op otherwise.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity; zero or negative removes the item.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Quantity returns 0 for a product not in the cart.
func (c *Cart) Quantity(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return c.Items[i].Quantity
		}
	}
	return 0
}

func (c *Cart) TotalItems() int {
	n := 0
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

func (c *Cart) TotalPriceCents() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].UnitPriceCents * int64(c.Items[i].Quantity)
	}
	return total
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

// Snapshot returns a deep copy safe to hand across a boundary.
func (c *Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}
