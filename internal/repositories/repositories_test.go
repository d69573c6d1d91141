package repositories_test

import (
	"context"
	"testing"

	"petitshop/internal/database"
	"petitshop/internal/logs"
	"petitshop/internal/models"
	"petitshop/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory(logs.Discard())
	require.NoError(t, err)
	return db
}

func uintPtr(v uint) *uint { return &v }

func seedStorefront(t *testing.T, db *gorm.DB, ownerID *uint) models.Business {
	t.Helper()
	ctx := context.Background()
	businesses := repositories.NewGORMBusinessRepository(db)
	pages := repositories.NewGORMPageRepository(db)
	items := repositories.NewGORMCartItemRepository(db)

	b := models.Business{Name: "Shop", Category: "Crafts", OwnerID: ownerID}
	require.NoError(t, businesses.Create(ctx, &b))
	require.NoError(t, pages.Create(ctx, &models.Page{ID: "page-" + b.Name + "-1", Title: "Home", BusinessID: b.ID}))
	require.NoError(t, items.Create(ctx, &models.CartItem{
		ID: "item-1", Title: "Mug", Price: decimal.RequireFromString("12.50"), Category: "Kitchen", PageID: "page-" + b.Name + "-1",
	}))
	return b
}

func TestUserRepository_EmailRoleUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newDB(t))

	buyer := &models.User{Name: "Ann", Email: "Ann@Example.com", PasswordHash: "x", Role: models.RoleBuyer}
	require.NoError(t, repo.Create(ctx, buyer))
	assert.Equal(t, "ann@example.com", buyer.Email)

	seller := &models.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x", Role: models.RoleSeller}
	require.NoError(t, repo.Create(ctx, seller), "same email with another role is allowed")

	dup := &models.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x", Role: models.RoleBuyer}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicate(err))

	got, err := repo.GetByEmailAndRole(ctx, "ANN@example.com", models.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, repositories.IsNotFound(err))
}

func TestBusinessRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	b := seedStorefront(t, db, nil)

	repo := repositories.NewGORMBusinessRepository(db)
	loaded, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 1)
	require.Len(t, loaded.Pages[0].CartItems, 1)

	require.NoError(t, repo.Delete(ctx, b.ID))

	var pages, items int64
	db.Model(&models.Page{}).Count(&pages)
	db.Model(&models.CartItem{}).Count(&items)
	assert.Zero(t, pages)
	assert.Zero(t, items)

	err = repo.Delete(ctx, b.ID)
	assert.True(t, repositories.IsNotFound(err))
}

func TestBusinessRepository_OwnersAndOrphans(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	users := repositories.NewGORMUserRepository(db)
	repo := repositories.NewGORMBusinessRepository(db)

	owner := &models.User{Name: "Sam", Email: "sam@example.com", PasswordHash: "x", Role: models.RoleSeller}
	require.NoError(t, users.Create(ctx, owner))

	owned := models.Business{Name: "Owned", OwnerID: &owner.ID}
	ghost := models.Business{Name: "Ghost", OwnerID: uintPtr(4242)}
	nobody := models.Business{Name: "Nobody"}
	for _, b := range []*models.Business{&owned, &ghost, &nobody} {
		require.NoError(t, repo.Create(ctx, b))
	}

	withOwner, err := repo.GetWithOwner(ctx, owned.ID)
	require.NoError(t, err)
	require.NotNil(t, withOwner.Owner)
	assert.Equal(t, "Sam", withOwner.Owner.Name)

	found, err := repo.FindWithOwners(ctx, []uint{ghost.ID, owned.ID, 777})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, owned.ID, found[0].Business.ID)
	assert.Nil(t, found[1].Owner)

	orphans, err := repo.FindOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	assert.Equal(t, ghost.ID, orphans[0].ID)
	assert.Equal(t, nobody.ID, orphans[1].ID)

	mine, err := repo.List(ctx, &owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCartItemRepository_StorefrontListing(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	b := seedStorefront(t, db, nil)
	repo := repositories.NewGORMCartItemRepository(db)

	listings, err := repo.ListStorefront(ctx, repositories.CatalogFilter{BusinessID: &b.ID})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	view := listings[0].View()
	require.NotNil(t, view.BusinessID)
	assert.Equal(t, b.ID, *view.BusinessID)

	listings, err = repo.ListStorefront(ctx, repositories.CatalogFilter{Category: "Garden"})
	require.NoError(t, err)
	assert.Empty(t, listings)

	item, page, err := repo.FindFirstWithPage(ctx, []string{"missing", "item-1"})
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, b.ID, page.BusinessID)
}

func TestPageRepository_DeleteRemovesItems(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	seedStorefront(t, db, nil)
	repo := repositories.NewGORMPageRepository(db)

	require.NoError(t, repo.Delete(ctx, "page-Shop-1"))
	exists, err := repositories.NewGORMCartItemRepository(db).Exists(ctx, "item-1")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.True(t, repositories.IsNotFound(repo.Delete(ctx, "page-Shop-1")))
}

func TestOrderRepository_UpdatePayment(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(newDB(t))

	order := &models.Order{ItemsJSON: "[]", Total: decimal.RequireFromString("9.99")}
	require.NoError(t, repo.Create(ctx, order))

	status := models.PaymentCompleted
	captureID := "CAP-1"
	order.PayPalPaymentStatus = &status
	order.PayPalCaptureID = &captureID
	require.NoError(t, repo.UpdatePayment(ctx, order))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PayPalPaymentStatus)
	assert.Equal(t, models.PaymentCompleted, *got.PayPalPaymentStatus)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("9.99")))
}
