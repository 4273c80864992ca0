// Package cart models the shopping cart the storefront keeps in client memory:
// an ordered list of product ids where a repeated id means a larger quantity.
package cart

import "strings"

// Cart is an ordered list of product ids. The zero value is an empty cart.
type Cart struct {
	ids []string
}

// New returns a cart holding ids in order, skipping blank entries.
func New(ids ...string) *Cart {
	c := &Cart{}
	for _, id := range ids {
		c.Add(id)
	}
	return c
}

// Parse decodes a comma-joined list of ids as submitted by the checkout form.
func Parse(encoded string) *Cart {
	return New(strings.Split(encoded, ",")...)
}

// Add appends one unit of the product.
func (c *Cart) Add(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	c.ids = append(c.ids, id)
}

// RemoveOne drops the first occurrence of id.
// It reports whether anything was removed.
func (c *Cart) RemoveOne(id string) bool {
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart, as done after a successful payment redirect.
func (c *Cart) Clear() {
	c.ids = nil
}

// Len returns the number of units in the cart.
func (c *Cart) Len() int {
	return len(c.ids)
}

// IsEmpty reports whether the cart holds no units.
func (c *Cart) IsEmpty() bool {
	return len(c.ids) == 0
}

// Count returns how many units of id are in the cart.
func (c *Cart) Count(id string) int {
	n := 0
	for _, existing := range c.ids {
		if existing == id {
			n++
		}
	}
	return n
}

// IDs returns a copy of the raw id list.
func (c *Cart) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Distinct returns each id once, in order of first appearance.
func (c *Cart) Distinct() []string {
	seen := make(map[string]struct{}, len(c.ids))
	out := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Quantities maps each distinct id to its number of units.
func (c *Cart) Quantities() map[string]int {
	q := make(map[string]int, len(c.ids))
	for _, id := range c.ids {
		q[id]++
	}
	return q
}

// Encode returns the comma-joined form used by the checkout form.
func (c *Cart) Encode() string {
	return strings.Join(c.ids, ",")
}
