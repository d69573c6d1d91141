package services

import (
	"context"
	"strings"

	"petitshop/internal/apperrors"
	"petitshop/internal/models"
	"petitshop/internal/repositories"

	"github.com/google/uuid"
)

// PageService manages storefront pages.
type PageService struct {
	pages      repositories.PageRepository
	businesses repositories.BusinessRepository
}

func NewPageService(pages repositories.PageRepository, businesses repositories.BusinessRepository) *PageService {
	return &PageService{pages: pages, businesses: businesses}
}

// PageInput is a page as sent by the client. ID may be empty on create.
type PageInput struct {
	ID         string
	Title      string
	BusinessID uint
}

func (s *PageService) List(ctx context.Context, businessID *uint) ([]models.Page, error) {
	pages, err := s.pages.List(ctx, businessID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to list pages")
	}
	return pages, nil
}

func (s *PageService) Get(ctx context.Context, id string) (*models.Page, error) {
	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("Page not found")
		}
		return nil, apperrors.Internal(err, "Failed to load page")
	}
	return page, nil
}

func (s *PageService) requireBusiness(ctx context.Context, businessID uint) error {
	ok, err := s.businesses.Exists(ctx, businessID)
	if err != nil {
		return apperrors.Internal(err, "Failed to check business")
	}
	if !ok {
		return apperrors.BadRequest("Business %d does not exist", businessID)
	}
	return nil
}

// Create stores a new page. A taken id is a conflict.
func (s *PageService) Create(ctx context.Context, in PageInput) (*models.Page, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	} else {
		exists, err := s.pages.Exists(ctx, id)
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to check page")
		}
		if exists {
			return nil, apperrors.Conflict("Page %s already exists", id)
		}
	}
	if err := s.requireBusiness(ctx, in.BusinessID); err != nil {
		return nil, err
	}

	page := &models.Page{ID: id, Title: in.Title, BusinessID: in.BusinessID, CartItems: []models.CartItem{}}
	if err := s.pages.Create(ctx, page); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, apperrors.Conflict("Page %s already exists", id)
		}
		return nil, apperrors.Internal(err, "Failed to create page")
	}
	return page, nil
}

// Upsert updates the page with id, or creates it when it does not exist.
func (s *PageService) Upsert(ctx context.Context, id string, in PageInput) (page *models.Page, created bool, err error) {
	if in.ID != "" && in.ID != id {
		return nil, false, apperrors.BadRequest("Page id in body does not match the path")
	}
	if err := s.requireBusiness(ctx, in.BusinessID); err != nil {
		return nil, false, err
	}
	existing, err := s.pages.GetByID(ctx, id)
	switch {
	case repositories.IsNotFound(err):
		page = &models.Page{ID: id, Title: in.Title, BusinessID: in.BusinessID, CartItems: []models.CartItem{}}
		if err := s.pages.Create(ctx, page); err != nil {
			return nil, false, apperrors.Internal(err, "Failed to create page")
		}
		return page, true, nil
	case err != nil:
		return nil, false, apperrors.Internal(err, "Failed to load page")
	}

	existing.Title = in.Title
	existing.BusinessID = in.BusinessID
	if err := s.pages.Update(ctx, existing); err != nil {
		return nil, false, apperrors.Internal(err, "Failed to update page")
	}
	return existing, false, nil
}

// Delete removes the page and its items.
func (s *PageService) Delete(ctx context.Context, id string) error {
	if err := s.pages.Delete(ctx, id); err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("Page not found")
		}
		return apperrors.Internal(err, "Failed to delete page")
	}
	return nil
}
