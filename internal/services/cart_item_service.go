package services

import (
	"context"
	"strings"

	"petitshop/internal/apperrors"
	"petitshop/internal/models"
	"petitshop/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemService manages the items placed on storefront pages.
type CartItemService struct {
	items repositories.CartItemRepository
	pages repositories.PageRepository
}

func NewCartItemService(items repositories.CartItemRepository, pages repositories.PageRepository) *CartItemService {
	return &CartItemService{items: items, pages: pages}
}

// CartItemInput is an item as sent by the client. ID may be empty on create.
type CartItemInput struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Category string
	Image    *string
	PageID   string
}

func (in CartItemInput) apply(item *models.CartItem) {
	item.Title = in.Title
	item.Price = in.Price
	item.Category = in.Category
	item.Image = in.Image
	item.PageID = in.PageID
}

func (s *CartItemService) List(ctx context.Context, pageID *string) ([]models.CartItem, error) {
	items, err := s.items.List(ctx, pageID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to list cart items")
	}
	return items, nil
}

func (s *CartItemService) Get(ctx context.Context, id string) (*models.CartItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("Cart item not found")
		}
		return nil, apperrors.Internal(err, "Failed to load cart item")
	}
	return item, nil
}

func (s *CartItemService) validate(ctx context.Context, in CartItemInput) error {
	if in.Price.IsNegative() {
		return apperrors.BadRequest("Price must not be negative")
	}
	if strings.TrimSpace(in.PageID) == "" {
		return apperrors.BadRequest("Page id is required")
	}
	ok, err := s.pages.Exists(ctx, in.PageID)
	if err != nil {
		return apperrors.Internal(err, "Failed to check page")
	}
	if !ok {
		return apperrors.BadRequest("Page %s does not exist", in.PageID)
	}
	return nil
}

// Create stores a new item. A taken id is a conflict.
func (s *CartItemService) Create(ctx context.Context, in CartItemInput) (*models.CartItem, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	} else {
		exists, err := s.items.Exists(ctx, id)
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to check cart item")
		}
		if exists {
			return nil, apperrors.Conflict("Cart item %s already exists", id)
		}
	}

	item := &models.CartItem{ID: id}
	in.apply(item)
	if err := s.items.Create(ctx, item); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, apperrors.Conflict("Cart item %s already exists", id)
		}
		return nil, apperrors.Internal(err, "Failed to create cart item")
	}
	return item, nil
}

// Upsert updates the item with id, or creates it when it does not exist.
func (s *CartItemService) Upsert(ctx context.Context, id string, in CartItemInput) (item *models.CartItem, created bool, err error) {
	if in.ID != "" && in.ID != id {
		return nil, false, apperrors.BadRequest("Cart item id in body does not match the path")
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, false, err
	}
	existing, err := s.items.GetByID(ctx, id)
	switch {
	case repositories.IsNotFound(err):
		item = &models.CartItem{ID: id}
		in.apply(item)
		if err := s.items.Create(ctx, item); err != nil {
			return nil, false, apperrors.Internal(err, "Failed to create cart item")
		}
		return item, true, nil
	case err != nil:
		return nil, false, apperrors.Internal(err, "Failed to load cart item")
	}

	in.apply(existing)
	if err := s.items.Update(ctx, existing); err != nil {
		return nil, false, apperrors.Internal(err, "Failed to update cart item")
	}
	return existing, false, nil
}

func (s *CartItemService) Delete(ctx context.Context, id string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("Cart item not found")
		}
		return apperrors.Internal(err, "Failed to delete cart item")
	}
	return nil
}
