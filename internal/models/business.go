package models

import "github.com/shopspring/decimal"

// Business is a seller's storefront. OwnerID is a weak reference: the owner row may be
// missing, which makes the business an orphan.
type Business struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Category string `json:"category" gorm:"type:varchar(100)"`
	Country  string `json:"country" gorm:"type:varchar(100)"`
	City     string `json:"city" gorm:"type:varchar(100)"`
	OwnerID  *uint  `json:"ownerId" gorm:"index"`
	Pages    []Page `json:"pages" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// Page is a section of a storefront. Its id is an opaque client token.
type Page struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Title      string     `json:"title" gorm:"type:varchar(200)"`
	BusinessID uint       `json:"businessId" gorm:"not null;index"`
	CartItems  []CartItem `json:"carts" gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

// CartItem is a sellable item placed on a page. Its id is an opaque client token.
type CartItem struct {
	ID       string          `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Title    string          `json:"title" gorm:"type:varchar(200)"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Category string          `json:"category" gorm:"type:varchar(100);index"`
	Image    *string         `json:"image"`
	PageID   string          `json:"pageId" gorm:"type:varchar(64);not null;index"`
}
