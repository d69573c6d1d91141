package models_test

import (
	"encoding/json"
	"testing"

	"petitshop/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineItems(t *testing.T) {
	items, err := models.ParseLineItems(`[{"sellerId":3,"productId":7,"name":"Mug","price":10.00,"quantity":2},{"SellerId":4,"ProductId":8,"Name":"Tee","Price":"5.5","Quantity":1}]`)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(3), items[0].SellerID)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, uint(4), items[1].SellerID, "field names match case-insensitively")
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("5.5")))

	empty, err := models.ParseLineItems("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	empty, err = models.ParseLineItems("null")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = models.ParseLineItems("{not json")
	assert.Error(t, err)
}

func TestGroupBySeller_Subtotals(t *testing.T) {
	items := []models.LineItem{
		{SellerID: 1, ProductID: "10", Name: "A", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		{SellerID: 2, ProductID: "20", Name: "B", Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{SellerID: 1, ProductID: "11", Name: "C", Price: decimal.RequireFromString("5.00"), Quantity: 1},
	}

	groups := models.GroupBySeller(items)
	require.Len(t, groups, 2)
	assert.Equal(t, uint(1), groups[0].SellerID)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "25", groups[0].Subtotal().String())
	assert.Equal(t, uint(2), groups[1].SellerID)
	assert.Equal(t, "0.3", groups[1].Subtotal().String())

	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Subtotal())
	}
	assert.True(t, total.Equal(models.Subtotal(items)))
	assert.Equal(t, []uint{1, 2}, models.SellerIDs(items))
}

func TestPaymentStatus_IsSuccess(t *testing.T) {
	assert.True(t, models.PaymentCompleted.IsSuccess())
	assert.True(t, models.PaymentApproved.IsSuccess())
	assert.False(t, models.PaymentPending.IsSuccess())
	assert.False(t, models.PaymentFailed.IsSuccess())
	assert.False(t, models.PaymentStatus("completed").IsSuccess())
}

func TestMergeListings_StorefrontFirst(t *testing.T) {
	page := &models.Page{ID: "p1", BusinessID: 9}
	storefront := []models.Listing{
		models.StorefrontListing(models.CartItem{ID: "c1", Title: "Scarf", Price: decimal.NewFromInt(12), PageID: "p1"}, page),
	}
	catalog := []models.Listing{
		models.CatalogListing(models.Product{ID: 5, Title: "Hat", Price: decimal.NewFromInt(20), BusinessID: 9}),
	}

	merged := models.MergeListings(storefront, catalog)
	require.Len(t, merged, 2)

	first := merged[0].View()
	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, models.SourceStorefront, first.Source)
	require.NotNil(t, first.BusinessID)
	assert.Equal(t, uint(9), *first.BusinessID)

	second := merged[1].View()
	assert.Equal(t, "5", second.ID)
	assert.Equal(t, models.SourceCatalog, second.Source)
}

func TestParseRole(t *testing.T) {
	r, err := models.ParseRole("seller")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, r)
	assert.True(t, r.IsValid())

	_, err = models.ParseRole("admin")
	assert.Error(t, err)
	assert.False(t, models.Role("admin").IsValid())
}

func TestParseLineItems_StorefrontAndCatalogIDs(t *testing.T) {
	items, err := models.ParseLineItems(`[{"sellerId":1,"productId":"3f2a-mug","name":"Mug","price":9.5,"quantity":1},{"sellerId":1,"productId":12,"name":"Pan","price":"20","quantity":1},{"sellerId":1,"productId":null,"name":"Gift","price":"1","quantity":1}]`)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, models.ItemRef("3f2a-mug"), items[0].ProductID)
	assert.Equal(t, models.ItemRef("12"), items[1].ProductID)
	assert.Empty(t, items[2].ProductID)

	raw, err := json.Marshal(items[:2])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"productId":"3f2a-mug"`)
	assert.Contains(t, string(raw), `"productId":12`)

	_, err = models.ParseLineItems(`[{"sellerId":1,"productId":{"id":1}}]`)
	assert.Error(t, err)
}

func TestShippingInfo_IsEmpty(t *testing.T) {
	assert.True(t, models.ShippingInfo{}.IsEmpty())
	city := "Lyon"
	assert.False(t, models.ShippingInfo{City: &city}.IsEmpty())
}
