package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the processor status recorded on an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentApproved  PaymentStatus = "APPROVED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// IsSuccess reports whether the status confirms the payment.
func (s PaymentStatus) IsSuccess() bool {
	return s == PaymentCompleted || s == PaymentApproved
}

// Order is a placed order. ItemsJSON is the line-item snapshot taken at creation time.
type Order struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	UserID              *uint           `json:"userId" gorm:"index"`
	ItemsJSON           string          `json:"itemsJson" gorm:"type:text;not null"`
	Total               decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CreatedAt           time.Time       `json:"createdAt"`
	ShippingAddress     *string         `json:"shippingAddress" gorm:"type:text"`
	ShippingType        *string         `json:"shippingType" gorm:"type:varchar(50)"`
	PayPalOrderID       *string         `json:"payPalOrderId" gorm:"type:varchar(64)"`
	PayPalPayerID       *string         `json:"payPalPayerId" gorm:"type:varchar(64)"`
	PayPalPaymentStatus *PaymentStatus  `json:"payPalPaymentStatus" gorm:"type:varchar(32)"`
	PayPalCaptureID     *string         `json:"payPalCaptureId" gorm:"type:varchar(64)"`
}

// LineItem is one snapshot line. SellerID references a Business id; ProductID is either a
// catalog Product id or a storefront CartItem id.
type LineItem struct {
	SellerID  uint            `json:"sellerId"`
	ProductID ItemRef         `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ItemRef is an item id that arrives as a JSON number or string. Numeric refs are written
// back as numbers.
type ItemRef string

func (r *ItemRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ItemRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid item id %s", string(data))
	}
	*r = ItemRef(n.String())
	return nil
}

func (r ItemRef) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseUint(string(r), 10, 64); err == nil {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

// LineTotal is price times quantity, without rounding.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ParseLineItems decodes a snapshot. Blank input decodes to an empty list.
func ParseLineItems(raw string) ([]LineItem, error) {
	if raw == "" {
		return []LineItem{}, nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("invalid line items: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

// Subtotal sums the line totals exactly.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// SellerGroup is the slice of an order belonging to one seller.
type SellerGroup struct {
	SellerID uint
	Items    []LineItem
}

// Subtotal is the seller's share of the order.
func (g SellerGroup) Subtotal() decimal.Decimal {
	return Subtotal(g.Items)
}

// GroupBySeller partitions items by SellerID in order of first appearance.
func GroupBySeller(items []LineItem) []SellerGroup {
	index := make(map[uint]int)
	var groups []SellerGroup
	for _, it := range items {
		i, ok := index[it.SellerID]
		if !ok {
			i = len(groups)
			index[it.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: it.SellerID})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// SellerIDs returns the distinct seller ids, ascending.
func SellerIDs(items []LineItem) []uint {
	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, it := range items {
		if _, ok := seen[it.SellerID]; ok {
			continue
		}
		seen[it.SellerID] = struct{}{}
		ids = append(ids, it.SellerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ShippingInfo is serialized into Order.ShippingAddress as an opaque JSON string.
type ShippingInfo struct {
	FullName   *string `json:"fullName"`
	Address1   *string `json:"address1"`
	Address2   *string `json:"address2"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	Phone      *string `json:"phone"`
}

// IsEmpty reports whether no field is set.
func (s ShippingInfo) IsEmpty() bool {
	for _, f := range []*string{s.FullName, s.Address1, s.Address2, s.City, s.State, s.PostalCode, s.Country, s.Phone} {
		if f != nil {
			return false
		}
	}
	return true
}

// Encode returns the stored representation.
func (s ShippingInfo) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
