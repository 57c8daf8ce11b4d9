// internal/models/order.go
package models

import (
	"github.com/shopspring/decimal"
)

// Order is created only by the checkout flow. Everything except Status and
// PaymentReference is immutable after creation.
type Order struct {
	BaseModel
	UserID            uint            `json:"user_id" gorm:"not null;index"`
	TrackingCode      string          `json:"tracking_code" gorm:"uniqueIndex;size:13;not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Cep               string          `json:"cep" gorm:"size:8;not null"`
	HouseNumber       int             `json:"house_number" gorm:"not null"`
	ShippingPrice     decimal.Decimal `json:"shipping_price" gorm:"type:decimal(10,2);not null"`
	InstallmentAmount int             `json:"installment_amount" gorm:"default:0"`
	PaymentReference  string          `json:"payment_reference,omitempty" gorm:"size:255"`

	// Relationships
	User          User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProductGroups []ProductGroup `json:"product_groups,omitempty" gorm:"foreignKey:OrderID"`
}

// Total sums the order's line items at current product prices plus shipping.
func (o *Order) Total() decimal.Decimal {
	total := o.ShippingPrice
	for _, group := range o.ProductGroups {
		total = total.Add(o.groupSubtotal(group))
	}
	return total
}

func (o *Order) groupSubtotal(group ProductGroup) decimal.Decimal {
	price := group.Product.Price
	if group.Product.Discount > 0 {
		price = price.Mul(decimal.NewFromFloat(1 - group.Product.Discount))
	}
	return price.Mul(decimal.NewFromInt(int64(group.Amount)))
}
