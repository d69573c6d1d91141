package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is a catalog row, independent of the items placed on storefront pages.
type Product struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Title      string          `json:"title" gorm:"type:varchar(200);not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Category   string          `json:"category" gorm:"type:varchar(100);index"`
	Image      *string         `json:"image"`
	BusinessID uint            `json:"businessId" gorm:"not null;index"`
}

// ListingSource tells where a catalog entry came from.
type ListingSource string

const (
	SourceStorefront ListingSource = "storefront"
	SourceCatalog    ListingSource = "catalog"
)

// Listing is one entry of the merged product view: either a storefront CartItem together
// with its page, or a catalog Product. Exactly one of Item or Product is set.
type Listing struct {
	Item    *CartItem
	Page    *Page
	Product *Product
}

// StorefrontListing wraps a cart item placed on page.
func StorefrontListing(item CartItem, page *Page) Listing {
	return Listing{Item: &item, Page: page}
}

// CatalogListing wraps a catalog product.
func CatalogListing(p Product) Listing {
	return Listing{Product: &p}
}

// ListingView is the flat JSON shape of a Listing.
type ListingView struct {
	ID         string          `json:"id"`
	Source     ListingSource   `json:"source"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Category   string          `json:"category"`
	Image      *string         `json:"image"`
	BusinessID *uint           `json:"businessId"`
}

// View flattens the listing for responses.
func (l Listing) View() ListingView {
	switch {
	case l.Item != nil:
		v := ListingView{
			ID:       l.Item.ID,
			Source:   SourceStorefront,
			Title:    l.Item.Title,
			Price:    l.Item.Price,
			Category: l.Item.Category,
			Image:    l.Item.Image,
		}
		if l.Page != nil {
			id := l.Page.BusinessID
			v.BusinessID = &id
		}
		return v
	case l.Product != nil:
		id := l.Product.BusinessID
		return ListingView{
			ID:         strconv.FormatUint(uint64(l.Product.ID), 10),
			Source:     SourceCatalog,
			Title:      l.Product.Title,
			Price:      l.Product.Price,
			Category:   l.Product.Category,
			Image:      l.Product.Image,
			BusinessID: &id,
		}
	default:
		return ListingView{}
	}
}

// MergeListings puts storefront items before catalog products, keeping each group's order.
func MergeListings(storefront []Listing, catalog []Listing) []Listing {
	out := make([]Listing, 0, len(storefront)+len(catalog))
	out = append(out, storefront...)
	out = append(out, catalog...)
	return out
}
