package services

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strconv"
	"strings"

	"petitshop/internal/apperrors"
	"petitshop/internal/models"
	"petitshop/internal/repositories"
)

// AdminPolicy gates the destructive maintenance operations.
type AdminPolicy struct {
	Development    bool
	AllowDeleteAll bool
	// Secret, when set, must be presented by the caller.
	Secret string
	// PurgeOrphans is the default of the reconciliation purge flag.
	PurgeOrphans bool
}

// BusinessService manages storefronts.
type BusinessService struct {
	businesses repositories.BusinessRepository
	users      repositories.UserRepository
	products   repositories.ProductRepository
	items      repositories.CartItemRepository
	admin      AdminPolicy
	log        *slog.Logger
}

// NewBusinessService creates a new BusinessService.
func NewBusinessService(
	businesses repositories.BusinessRepository,
	users repositories.UserRepository,
	products repositories.ProductRepository,
	items repositories.CartItemRepository,
	admin AdminPolicy,
	log *slog.Logger,
) *BusinessService {
	return &BusinessService{
		businesses: businesses,
		users:      users,
		products:   products,
		items:      items,
		admin:      admin,
		log:        log,
	}
}

// BusinessInput holds the client-editable business fields.
type BusinessInput struct {
	Name     string
	Category string
	Country  string
	City     string
}

func (s *BusinessService) List(ctx context.Context, ownerID *uint) ([]models.Business, error) {
	businesses, err := s.businesses.List(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to list businesses")
	}
	return businesses, nil
}

func (s *BusinessService) Get(ctx context.Context, id uint) (*models.Business, error) {
	business, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("Business not found")
		}
		return nil, apperrors.Internal(err, "Failed to load business")
	}
	return business, nil
}

// ListOwned returns the caller's businesses.
func (s *BusinessService) ListOwned(ctx context.Context, id Identity) ([]models.Business, error) {
	if _, err := s.users.GetByID(ctx, id.UserID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.Unauthorized("User no longer exists")
		}
		return nil, apperrors.Internal(err, "Failed to load user")
	}
	return s.List(ctx, &id.UserID)
}

// Create stores a business owned by the calling seller.
func (s *BusinessService) Create(ctx context.Context, id Identity, in BusinessInput) (*models.Business, error) {
	if id.Role != models.RoleSeller {
		return nil, apperrors.Forbidden("Only sellers can create businesses")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.BadRequest("Business name is required")
	}
	owner := id.UserID
	business := &models.Business{
		Name:     strings.TrimSpace(in.Name),
		Category: in.Category,
		Country:  in.Country,
		City:     in.City,
		OwnerID:  &owner,
	}
	if err := s.businesses.Create(ctx, business); err != nil {
		return nil, apperrors.Internal(err, "Failed to create business")
	}
	business.Pages = []models.Page{}
	s.log.InfoContext(ctx, "business created", slog.Uint64("business_id", uint64(business.ID)), slog.Uint64("owner_id", uint64(owner)))
	return business, nil
}

// ownedBy loads a business and checks that the caller is its owning seller.
func (s *BusinessService) ownedBy(ctx context.Context, id Identity, businessID uint) (*models.Business, error) {
	if id.Role != models.RoleSeller {
		return nil, apperrors.Forbidden("Only sellers can modify businesses")
	}
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("Business not found")
		}
		return nil, apperrors.Internal(err, "Failed to load business")
	}
	if business.OwnerID == nil || *business.OwnerID != id.UserID {
		return nil, apperrors.Forbidden("You do not own this business")
	}
	return business, nil
}

func (s *BusinessService) Update(ctx context.Context, id Identity, businessID uint, in BusinessInput) (*models.Business, error) {
	business, err := s.ownedBy(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.BadRequest("Business name is required")
	}
	business.Name = strings.TrimSpace(in.Name)
	business.Category = in.Category
	business.Country = in.Country
	business.City = in.City
	if err := s.businesses.Update(ctx, business); err != nil {
		return nil, apperrors.Internal(err, "Failed to update business")
	}
	return business, nil
}

// Delete removes the business with its pages and items.
func (s *BusinessService) Delete(ctx context.Context, id Identity, businessID uint) error {
	if _, err := s.ownedBy(ctx, id, businessID); err != nil {
		return err
	}
	if err := s.businesses.Delete(ctx, businessID); err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("Business not found")
		}
		return apperrors.Internal(err, "Failed to delete business")
	}
	s.log.InfoContext(ctx, "business deleted", slog.Uint64("business_id", uint64(businessID)))
	return nil
}

func (s *BusinessService) authorizeAdmin(secret string) error {
	if !s.admin.Development && !s.admin.AllowDeleteAll {
		return apperrors.Forbidden("Admin operations are disabled in this environment")
	}
	if s.admin.Secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(s.admin.Secret)) != 1 {
		return apperrors.Unauthorized("Invalid admin secret")
	}
	return nil
}

// DeleteAll removes every business. Admin only.
func (s *BusinessService) DeleteAll(ctx context.Context, secret string) (int64, error) {
	if err := s.authorizeAdmin(secret); err != nil {
		return 0, err
	}
	n, err := s.businesses.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.Internal(err, "Failed to delete businesses")
	}
	s.log.WarnContext(ctx, "all businesses deleted", slog.Int64("count", n))
	return n, nil
}

// ReconcileResult reports an orphan reconciliation pass.
type ReconcileResult struct {
	Orphans []models.Business `json:"orphans"`
	Purged  bool              `json:"purged"`
	Deleted int64             `json:"deleted"`
}

// ReportOrphans logs every business whose owner is missing. It never deletes; purging goes
// through ReconcileOrphans.
func (s *BusinessService) ReportOrphans(ctx context.Context) ([]models.Business, error) {
	orphans, err := s.businesses.FindOrphans(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to find orphaned businesses")
	}
	for _, b := range orphans {
		attrs := []any{slog.Uint64("business_id", uint64(b.ID)), slog.String("name", b.Name)}
		if b.OwnerID != nil {
			attrs = append(attrs, slog.Uint64("owner_id", uint64(*b.OwnerID)))
		}
		s.log.WarnContext(ctx, "orphaned business", attrs...)
	}
	if len(orphans) > 0 {
		s.log.WarnContext(ctx, "orphaned businesses left in place, use the reconcile-orphans admin endpoint to purge",
			slog.Int("count", len(orphans)))
	}
	return orphans, nil
}

// ReconcileOrphans finds businesses whose owner is missing and deletes them when purge is set.
// A nil purge falls back to the configured default. Running it twice is harmless.
func (s *BusinessService) ReconcileOrphans(ctx context.Context, secret string, purge *bool) (*ReconcileResult, error) {
	if err := s.authorizeAdmin(secret); err != nil {
		return nil, err
	}
	doPurge := s.admin.PurgeOrphans
	if purge != nil {
		doPurge = *purge
	}

	orphans, err := s.businesses.FindOrphans(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to find orphaned businesses")
	}
	result := &ReconcileResult{Orphans: orphans, Purged: doPurge}
	if len(orphans) > 0 {
		s.log.WarnContext(ctx, "orphaned businesses found", slog.Int("count", len(orphans)))
	}
	if !doPurge || len(orphans) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(orphans))
	for _, b := range orphans {
		ids = append(ids, b.ID)
	}
	n, err := s.businesses.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to delete orphaned businesses")
	}
	result.Deleted = n
	s.log.WarnContext(ctx, "orphaned businesses deleted", slog.Int64("count", n))
	return result, nil
}

// MerchantResolution is the seller behind a set of items.
type MerchantResolution struct {
	MerchantID   string `json:"merchantId"`
	BusinessID   uint   `json:"businessId"`
	BusinessName string `json:"businessName"`
}

// ResolveMerchantID finds the merchant id of the seller selling one of itemIDs. Numeric ids are
// tried as catalog products first, then every id is tried as a storefront item.
func (s *BusinessService) ResolveMerchantID(ctx context.Context, itemIDs []string) (*MerchantResolution, error) {
	if len(itemIDs) == 0 {
		return nil, apperrors.BadRequest("At least one item id is required")
	}

	businessID, found, err := s.businessOfItems(ctx, itemIDs)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to resolve items")
	}
	if !found {
		return nil, apperrors.NotFound("No seller found for the given items")
	}

	bo, err := s.businesses.GetWithOwner(ctx, businessID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("No seller found for the given items")
		}
		return nil, apperrors.Internal(err, "Failed to load business")
	}
	merchantID := bo.Owner.MerchantID()
	if merchantID == "" {
		return nil, apperrors.NotFound("Seller %s has not configured PayPal", bo.Business.Name)
	}
	return &MerchantResolution{MerchantID: merchantID, BusinessID: bo.Business.ID, BusinessName: bo.Business.Name}, nil
}

func (s *BusinessService) businessOfItems(ctx context.Context, itemIDs []string) (uint, bool, error) {
	numeric := make([]uint, 0, len(itemIDs))
	for _, raw := range itemIDs {
		if n, err := strconv.ParseUint(raw, 10, 0); err == nil {
			numeric = append(numeric, uint(n))
		}
	}
	if len(numeric) > 0 {
		product, err := s.products.FindFirst(ctx, numeric)
		switch {
		case err == nil:
			return product.BusinessID, true, nil
		case !repositories.IsNotFound(err):
			return 0, false, err
		}
	}

	_, page, err := s.items.FindFirstWithPage(ctx, itemIDs)
	switch {
	case err == nil:
		return page.BusinessID, true, nil
	case repositories.IsNotFound(err):
		return 0, false, nil
	default:
		return 0, false, err
	}
}
