// internal/models/rating.go
package models

type Rating struct {
	BaseModel
	UserID    uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_ratings_user_product"`
	ProductID uint   `json:"product_id" gorm:"not null;uniqueIndex:idx_ratings_user_product"`
	Score     int    `json:"score" gorm:"not null;check:score >= 1 AND score <= 5"`
	Comment   string `json:"comment" gorm:"type:text"`

	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
