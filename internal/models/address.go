// internal/models/address.go
package models

type Address struct {
	BaseModel
	UserID     uint   `json:"user_id" gorm:"not null;index"`
	Cep        string `json:"cep" gorm:"size:8;not null"`
	Street     string `json:"street" gorm:"size:255;not null"`
	Number     int    `json:"number" gorm:"not null"`
	Complement string `json:"complement" gorm:"size:255"`
	District   string `json:"district" gorm:"size:100"`
	City       string `json:"city" gorm:"size:100;not null"`
	State      string `json:"state" gorm:"size:2;not null"`
}
