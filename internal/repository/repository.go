package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tradepost/internal/models"
	"tradepost/internal/validation"
)

// ListingRepository is the persistence boundary for listings. Create stamps
// the seller and location snapshots from the creating user; Update only
// touches the mutable fields and re-runs the same domain validation.
//
// Concurrent updates to the same listing are last-write-wins; there is no
// version token on purpose.
type ListingRepository interface {
	Create(ctx context.Context, user *models.User, fields validation.ListingFields) (*models.Listing, error)
	GetByID(ctx context.Context, listingID string) (*models.Listing, error)
	List(ctx context.Context, offset, limit int) ([]models.Listing, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error)
	Update(ctx context.Context, listingID string, fields validation.ListingFields) (*models.Listing, error)
	UpdateImageURLs(ctx context.Context, listingID string, imageURLs []string) error
	Delete(ctx context.Context, listingID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User, password string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type Repository struct {
	Listing ListingRepository
	User    UserRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Listing: NewListingRepository(db),
		User:    NewUserRepository(db),
	}
}
