package service

import (
	"context"

	"go.uber.org/zap"

	"tradepost/internal/cache"
	"tradepost/internal/models"
	"tradepost/internal/repository"
	"tradepost/internal/validation"
)

// ListingService orchestrates the listing lifecycle. Mutations run the
// pipeline in a fixed order: existence first, then ownership, then payload
// shape, then domain validation — an unauthorized caller never learns
// anything about a listing's shape from validation errors.
type ListingService interface {
	Create(ctx context.Context, principal models.Principal, payload []byte) (*models.Listing, error)
	Get(ctx context.Context, listingID string) (*models.Listing, error)
	List(ctx context.Context, offset, limit int) ([]models.Listing, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error)
	Update(ctx context.Context, principal models.Principal, listingID string, payload []byte) (*models.Listing, error)
	Delete(ctx context.Context, principal models.Principal, listingID string) error
	UploadImages(ctx context.Context, principal models.Principal, listingID string, files []UploadFile) ([]string, error)
}

type listingService struct {
	listings    repository.ListingRepository
	users       repository.UserRepository
	attachments *AttachmentManager
	cache       *cache.ListingCache
	log         *zap.Logger
}

func NewListingService(
	listings repository.ListingRepository,
	users repository.UserRepository,
	attachments *AttachmentManager,
	listingCache *cache.ListingCache,
	log *zap.Logger,
) ListingService {
	return &listingService{
		listings:    listings,
		users:       users,
		attachments: attachments,
		cache:       listingCache,
		log:         log,
	}
}

// Create needs no ownership check: the creator is inherently the owner. The
// seller and location snapshots come from the creating user's profile.
func (s *listingService) Create(ctx context.Context, principal models.Principal, payload []byte) (*models.Listing, error) {
	fields, err := validation.ParseListingFields(payload)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.Create(ctx, user, fields)
	if err != nil {
		return nil, err
	}

	s.log.Info("listing created",
		zap.String("listing_id", listing.ListingID),
		zap.String("seller", listing.Seller.Username))
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	if cached, err := s.cache.Get(ctx, listingID); err != nil {
		s.log.Warn("listing cache read failed", zap.String("listing_id", listingID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, listing); err != nil {
		s.log.Warn("listing cache write failed", zap.String("listing_id", listingID), zap.Error(err))
	}
	return listing, nil
}

func (s *listingService) List(ctx context.Context, offset, limit int) ([]models.Listing, error) {
	return s.listings.List(ctx, offset, limit)
}

func (s *listingService) Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error) {
	return s.listings.Search(ctx, filter)
}

func (s *listingService) Update(ctx context.Context, principal models.Principal, listingID string, payload []byte) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := OwnerOnly(principal, listing); err != nil {
		return nil, err
	}

	fields, err := validation.ParseListingFields(payload)
	if err != nil {
		return nil, err
	}

	updated, err := s.listings.Update(ctx, listingID, fields)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, listingID)
	return updated, nil
}

// Delete removes the record first and cleans the files up afterwards: once
// the listing is gone nothing references them, so file removal is a
// best-effort follow-up.
func (s *listingService) Delete(ctx context.Context, principal models.Principal, listingID string) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if err := OwnerOnly(principal, listing); err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		return err
	}

	s.attachments.RemoveAll(ctx, listing.ImageURLs)
	s.invalidate(ctx, listingID)

	s.log.Info("listing deleted",
		zap.String("listing_id", listingID),
		zap.Int("images_removed", len(listing.ImageURLs)))
	return nil
}

// UploadImages replaces the listing's whole image set. Zero files is the
// defined way to clear all images. New files are written before the record
// is swapped and the old files are deleted only after, so imageUrls never
// points at a missing file.
func (s *listingService) UploadImages(ctx context.Context, principal models.Principal, listingID string, files []UploadFile) ([]string, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := OwnerOnly(principal, listing); err != nil {
		return nil, err
	}

	urls, err := s.attachments.Stage(ctx, files)
	if err != nil {
		return nil, err
	}

	if err := s.listings.UpdateImageURLs(ctx, listingID, urls); err != nil {
		s.attachments.Discard(ctx, urls)
		return nil, err
	}

	s.attachments.RemoveAll(ctx, listing.ImageURLs)
	s.invalidate(ctx, listingID)

	s.log.Info("listing images replaced",
		zap.String("listing_id", listingID),
		zap.Int("count", len(urls)))
	return urls, nil
}

func (s *listingService) invalidate(ctx context.Context, listingID string) {
	if err := s.cache.Invalidate(ctx, listingID); err != nil {
		s.log.Warn("listing cache invalidation failed", zap.String("listing_id", listingID), zap.Error(err))
	}
}
