// internal/models/product.go
package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SellerID         uint             `json:"seller_id" gorm:"not null;index"`
	Name             string           `json:"name" gorm:"size:255;not null"`
	Description      string           `json:"description" gorm:"type:text"`
	Price            decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	InstallmentPrice *decimal.Decimal `json:"installment_price,omitempty" gorm:"type:decimal(10,2)"`
	InstallmentCount int              `json:"installment_count" gorm:"default:0"`
	Discount         float64          `json:"discount" gorm:"type:decimal(4,3);default:0"`
	StockAmount      int              `json:"stock_amount" gorm:"not null;default:0;check:stock_amount >= 0"`
	OrdersAmount     int64            `json:"orders_amount" gorm:"default:0"`
	Images           pq.StringArray   `json:"images" gorm:"type:text[]"`
	Rating           float64          `json:"rating" gorm:"type:decimal(3,2);default:0"`
	RatingCount      int64            `json:"rating_count" gorm:"default:0"`

	// Relationships
	Seller     User       `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:product_categories"`
	Ratings    []Rating   `json:"ratings,omitempty" gorm:"foreignKey:ProductID"`
}
