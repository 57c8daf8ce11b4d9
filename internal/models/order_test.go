// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderTotalSumsGroupsAndShipping(t *testing.T) {
	order := &Order{
		ShippingPrice: decimal.NewFromInt(20),
		ProductGroups: []ProductGroup{
			{Amount: 2, Product: Product{Price: decimal.NewFromInt(50)}},
			{Amount: 1, Product: Product{Price: decimal.RequireFromString("9.90")}},
		},
	}

	assert.True(t, order.Total().Equal(decimal.RequireFromString("129.90")),
		"got %s", order.Total())
}

func TestOrderTotalAppliesDiscount(t *testing.T) {
	order := &Order{
		ShippingPrice: decimal.Zero,
		ProductGroups: []ProductGroup{
			{Amount: 2, Product: Product{Price: decimal.NewFromInt(100), Discount: 0.25}},
		},
	}

	assert.True(t, order.Total().Equal(decimal.NewFromInt(150)),
		"got %s", order.Total())
}

func TestOrderTotalEmptyOrderIsShippingOnly(t *testing.T) {
	order := &Order{ShippingPrice: decimal.RequireFromString("15.50")}
	assert.True(t, order.Total().Equal(decimal.RequireFromString("15.50")))
}
