package products

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductDecodesNumericAndStringPrices(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		price    string
		discount string
	}{
		{
			name:     "numeric fields",
			payload:  `{"id":5,"price":100.5,"discount_percentage":10}`,
			price:    "100.5",
			discount: "10",
		},
		{
			name:     "string fields",
			payload:  `{"id":5,"price":"100.5","discount_percentage":"10"}`,
			price:    "100.5",
			discount: "10",
		},
		{
			name:     "absent discount defaults to zero",
			payload:  `{"id":5,"price":"49.99"}`,
			price:    "49.99",
			discount: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &p))
			require.NoError(t, Normalize(&p))

			assert.True(t, p.Price.Equal(decimal.RequireFromString(tt.price)),
				"price: expected %s got %s", tt.price, p.Price)
			assert.True(t, p.DiscountPercentage.Equal(decimal.RequireFromString(tt.discount)),
				"discount: expected %s got %s", tt.discount, p.DiscountPercentage)
		})
	}
}

func TestNormalizeRejectsInvalidProducts(t *testing.T) {
	tests := []struct {
		name    string
		product Product
	}{
		{name: "zero id", product: Product{ID: 0}},
		{name: "negative price", product: Product{ID: 1, Price: decimal.NewFromInt(-1)}},
		{name: "discount above 100", product: Product{ID: 1, DiscountPercentage: decimal.NewFromInt(101)}},
		{name: "negative discount", product: Product{ID: 1, DiscountPercentage: decimal.NewFromInt(-5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Normalize(&tt.product))
		})
	}

	assert.Error(t, Normalize(nil))
}

func TestDiscountedUnitPrice(t *testing.T) {
	p := Product{
		ID:                 1,
		Price:              decimal.NewFromInt(100),
		DiscountPercentage: decimal.NewFromInt(10),
	}
	assert.True(t, p.DiscountedUnitPrice().Equal(decimal.NewFromInt(90)),
		"expected 90, got %s", p.DiscountedUnitPrice())

	free := Product{ID: 2, Price: decimal.NewFromInt(50)}
	assert.True(t, free.DiscountedUnitPrice().Equal(decimal.NewFromInt(50)))
}
