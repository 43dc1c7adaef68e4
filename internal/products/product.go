package products

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/bloomthreads/cartstate/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Product is the catalog descriptor the cart snapshots at add time. The
// upstream API serializes price and discount as either JSON numbers or
// strings; decimal decodes both, so the cart's arithmetic is never defensive.
type Product struct {
	ID                 int64           `json:"id" validate:"required,gt=0"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`

	// Display fields carried through untouched; the cart never interprets them.
	Title    string `json:"title,omitempty"`
	Brand    string `json:"brand,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Normalize enforces the strict numeric schema at the API boundary: positive
// id, non-negative price, discount within [0, 100]. Call before handing the
// product to the cart store.
func Normalize(p *Product) error {
	if p == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if p.ID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if p.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative")
	}
	if p.DiscountPercentage.IsNegative() || p.DiscountPercentage.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100")
	}
	return nil
}

// DiscountedUnitPrice returns price - price*discount/100.
func (p Product) DiscountedUnitPrice() decimal.Decimal {
	if p.DiscountPercentage.IsZero() {
		return p.Price
	}
	return p.Price.Sub(p.Price.Mul(p.DiscountPercentage).Div(oneHundred))
}
