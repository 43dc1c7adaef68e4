package cart

import (
	"github.com/bloomthreads/cartstate/internal/products"
)

// Item is one selected product configuration. IdentityKey is the effective
// primary key of the collection; Product is the catalog snapshot taken at
// add time and never re-fetched.
type Item struct {
	IdentityKey   string           `json:"identityKey"`
	Product       products.Product `json:"product"`
	Quantity      int              `json:"quantity"`
	SelectedSize  *string          `json:"selectedSize,omitempty"`
	SelectedColor *string          `json:"selectedColor,omitempty"`
}

// Snapshot is the full ordered set of cart line items at a point in time.
// Insertion order matters for display only.
type Snapshot []Item

// Clone returns a copy safe to hand to callers or mutate into the next
// committed state. Variant pointers are duplicated so no caller can reach
// back into store-owned memory.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for i, item := range s {
		item.SelectedSize = cloneString(item.SelectedSize)
		item.SelectedColor = cloneString(item.SelectedColor)
		out[i] = item
	}
	return out
}

func (s Snapshot) indexOf(key string) int {
	for i, item := range s {
		if item.IdentityKey == key {
			return i
		}
	}
	return -1
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
