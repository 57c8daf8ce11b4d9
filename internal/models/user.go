// internal/models/user.go
package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name           string     `json:"name" gorm:"size:100;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	CPF            string     `json:"cpf" gorm:"column:cpf;uniqueIndex;size:11;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	Roles          string     `json:"roles" gorm:"size:50;not null;default:'user'"`
	AvatarURL      string     `json:"avatar_url,omitempty" gorm:"size:500"`
	ShoppingCartID *uint      `json:"shopping_cart_id"`
	LastLoginAt    *time.Time `json:"last_login_at"`

	// Relationships
	Products  []Product `json:"products,omitempty" gorm:"foreignKey:SellerID"`
	Orders    []Order   `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	Ratings   []Rating  `json:"ratings,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasRole reports whether the user's delimited role string intersects the
// given role set.
func HasRole(roles string, required ...Role) bool {
	for _, held := range strings.Split(roles, RoleDelimiter) {
		for _, want := range required {
			if Role(strings.TrimSpace(held)) == want {
				return true
			}
		}
	}
	return false
}

func (u *User) HasRole(required ...Role) bool {
	return HasRole(u.Roles, required...)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
