// internal/models/cart.go
package models

type ShoppingCart struct {
	BaseModel
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	ProductGroups []ProductGroup `json:"product_groups,omitempty" gorm:"foreignKey:CartID"`
}

// ProductGroup is a (product, amount) line item owned by exactly one of a
// shopping cart or an order. Checkout reparents a cart's groups onto the
// new order before the cart row is deleted.
type ProductGroup struct {
	BaseModel
	CartID    *uint `json:"cart_id,omitempty" gorm:"index:idx_product_groups_cart_product,unique,where:cart_id IS NOT NULL"`
	OrderID   *uint `json:"order_id,omitempty" gorm:"index"`
	ProductID uint  `json:"product_id" gorm:"not null;index:idx_product_groups_cart_product,unique,where:cart_id IS NOT NULL"`
	Amount    int   `json:"amount" gorm:"not null;default:1;check:amount >= 1"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
