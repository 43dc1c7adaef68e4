package cart

import (
	"github.com/bloomthreads/cartstate/internal/products"
)

// AddItemRequest carries the catalog product snapshot plus the chosen
// variant. The product passes through boundary normalization before it
// reaches the store.
type AddItemRequest struct {
	Product       products.Product `json:"product"`
	SelectedSize  *string          `json:"selectedSize,omitempty"`
	SelectedColor *string          `json:"selectedColor,omitempty"`
}

// SetQuantityRequest updates a line's quantity; zero or negative values
// remove the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ChangeVariantRequest moves a line to a new size/color identity.
type ChangeVariantRequest struct {
	NewSize  *string `json:"newSize,omitempty"`
	NewColor *string `json:"newColor,omitempty"`
}
