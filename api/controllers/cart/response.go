package cart

import (
	"github.com/shopspring/decimal"

	"github.com/bloomthreads/cartstate/internal/products"
)

type ItemView struct {
	IdentityKey   string           `json:"identityKey"`
	Product       products.Product `json:"product"`
	Quantity      int              `json:"quantity"`
	SelectedSize  *string          `json:"selectedSize,omitempty"`
	SelectedColor *string          `json:"selectedColor,omitempty"`
	LineTotal     decimal.Decimal  `json:"lineTotal"`
}

type CartView struct {
	Items              []ItemView      `json:"items"`
	Total              decimal.Decimal `json:"total"`
	ItemCount          int             `json:"itemCount"`
	UniqueProductCount int             `json:"uniqueProductCount"`
}

// newCartView re-reads the canonical snapshot and aggregates, the same way
// every other subscribed consumer does after a notification.
func newCartView(svc Service) CartView {
	snapshot := svc.Snapshot()
	items := make([]ItemView, 0, len(snapshot))
	for _, item := range snapshot {
		lineTotal := item.Product.DiscountedUnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, ItemView{
			IdentityKey:   item.IdentityKey,
			Product:       item.Product,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
			LineTotal:     lineTotal,
		})
	}
	return CartView{
		Items:              items,
		Total:              svc.Total(),
		ItemCount:          svc.ItemCount(),
		UniqueProductCount: svc.UniqueProductCount(),
	}
}
