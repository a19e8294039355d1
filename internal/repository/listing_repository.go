package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tradepost/internal/apperr"
	"tradepost/internal/models"
	"tradepost/internal/validation"
)

type ListingRepositoryImpl struct {
	db       *sqlx.DB
	validate *validator.Validate
}

func NewListingRepository(db *sqlx.DB) *ListingRepositoryImpl {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ListingRepositoryImpl{db: db, validate: v}
}

const insertListingQuery = `
	INSERT INTO listings
	(listing_id, title, description, category, asking_price, shipping, pickup,
	 seller_username, seller_email, seller_phone_number,
	 location_country, location_city, location_postal_code, image_urls, posted)
	VALUES
	(:listing_id, :title, :description, :category, :asking_price, :shipping, :pickup,
	 :seller_username, :seller_email, :seller_phone_number,
	 :location_country, :location_city, :location_postal_code, :image_urls, :posted)
`

func (r *ListingRepositoryImpl) Create(ctx context.Context, user *models.User, fields validation.ListingFields) (*models.Listing, error) {
	if err := requireListingFields(fields); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		ListingID:   uuid.New().String(),
		Title:       *fields.Title,
		Description: *fields.Description,
		Category:    *fields.Category,
		AskingPrice: *fields.AskingPrice,
		DeliveryType: models.DeliveryType{
			Shipping: *fields.DeliveryType.Shipping,
			Pickup:   *fields.DeliveryType.Pickup,
		},
		Seller: models.Seller{
			Username:    user.Username,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
		},
		Location:  user.Address,
		ImageURLs: []string{},
		Posted:    time.Now().UTC(),
	}

	if err := r.validateListing(listing); err != nil {
		return nil, err
	}

	if _, err := r.db.NamedExecContext(ctx, insertListingQuery, listingToRow(listing)); err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to create listing: %w", err))
	}

	return listing, nil
}

func (r *ListingRepositoryImpl) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	// A malformed id and a missing one collapse to the same answer.
	if _, err := uuid.Parse(listingID); err != nil {
		return nil, apperr.New(apperr.ErrNotFound, "")
	}

	var row listingRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM listings WHERE listing_id = $1`, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "")
		}
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to get listing: %w", err))
	}

	listing := row.toModel()
	return &listing, nil
}

// List returns a stable, insertion-ordered window of listings. An offset
// beyond the total count yields an empty slice, never an error.
func (r *ListingRepositoryImpl) List(ctx context.Context, offset, limit int) ([]models.Listing, error) {
	if offset < 0 {
		return nil, apperr.New(apperr.ErrDomainValidation, "offset must be greater than or equal to 0")
	}
	if limit < 0 || limit > 100 {
		return nil, apperr.New(apperr.ErrDomainValidation, "limit must be between 0 and 100")
	}

	var rows []listingRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM listings ORDER BY posted, listing_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to list listings: %w", err))
	}

	listings := make([]models.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, row.toModel())
	}
	return listings, nil
}

// Search applies the filter as a conjunction. An empty filter set matches
// nothing: searching with no criteria is defined as "no results".
func (r *ListingRepositoryImpl) Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error) {
	if filter.Empty() {
		return []models.Listing{}, nil
	}

	var conditions []string
	var args []any

	if filter.Country != "" {
		args = append(args, filter.Country)
		conditions = append(conditions, fmt.Sprintf("location_country = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("location_city = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.PostedDate != "" {
		day, err := time.Parse(validation.PostedDateLayout, filter.PostedDate)
		if err != nil {
			return nil, apperr.New(apperr.ErrInvalidShape, "postedDate must be in YYYY-MM-DD format")
		}
		args = append(args, day)
		conditions = append(conditions, fmt.Sprintf("posted >= $%d", len(args)))
		args = append(args, day.Add(24*time.Hour))
		conditions = append(conditions, fmt.Sprintf("posted < $%d", len(args)))
	}

	query := `SELECT * FROM listings WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY posted, listing_id`

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to search listings: %w", err))
	}

	listings := make([]models.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, row.toModel())
	}
	return listings, nil
}

const updateListingQuery = `
	UPDATE listings SET
		title = :title,
		description = :description,
		category = :category,
		asking_price = :asking_price,
		shipping = :shipping,
		pickup = :pickup
	WHERE listing_id = :listing_id
`

// Update merges the provided fields into the stored listing and re-runs the
// same domain validation as Create. Posted, seller, location and imageUrls
// are not reachable through this path.
func (r *ListingRepositoryImpl) Update(ctx context.Context, listingID string, fields validation.ListingFields) (*models.Listing, error) {
	listing, err := r.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		listing.Title = *fields.Title
	}
	if fields.Description != nil {
		listing.Description = *fields.Description
	}
	if fields.Category != nil {
		listing.Category = *fields.Category
	}
	if fields.AskingPrice != nil {
		listing.AskingPrice = *fields.AskingPrice
	}
	if fields.DeliveryType != nil {
		if err := requireDeliveryFields(fields.DeliveryType); err != nil {
			return nil, err
		}
		listing.DeliveryType = models.DeliveryType{
			Shipping: *fields.DeliveryType.Shipping,
			Pickup:   *fields.DeliveryType.Pickup,
		}
	}

	if err := r.validateListing(listing); err != nil {
		return nil, err
	}

	result, err := r.db.NamedExecContext(ctx, updateListingQuery, listingToRow(listing))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to update listing: %w", err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, err)
	}
	if rowsAffected == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "")
	}

	return listing, nil
}

// UpdateImageURLs swaps the stored image set. This is the only write path
// that touches image_urls; the regular Update never does.
func (r *ListingRepositoryImpl) UpdateImageURLs(ctx context.Context, listingID string, imageURLs []string) error {
	if _, err := uuid.Parse(listingID); err != nil {
		return apperr.New(apperr.ErrNotFound, "")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE listings SET image_urls = $1 WHERE listing_id = $2`,
		pq.StringArray(imageURLs), listingID)
	if err != nil {
		return apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to update listing images: %w", err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.ErrStorage, err)
	}
	if rowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "")
	}

	return nil
}

func (r *ListingRepositoryImpl) Delete(ctx context.Context, listingID string) error {
	if _, err := uuid.Parse(listingID); err != nil {
		return apperr.New(apperr.ErrNotFound, "")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE listing_id = $1`, listingID)
	if err != nil {
		return apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to delete listing: %w", err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.ErrStorage, err)
	}
	if rowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "")
	}

	return nil
}

func requireListingFields(fields validation.ListingFields) error {
	switch {
	case fields.Title == nil:
		return apperr.New(apperr.ErrDomainValidation, "title is required")
	case fields.Description == nil:
		return apperr.New(apperr.ErrDomainValidation, "description is required")
	case fields.Category == nil:
		return apperr.New(apperr.ErrDomainValidation, "category is required")
	case fields.AskingPrice == nil:
		return apperr.New(apperr.ErrDomainValidation, "askingPrice is required")
	case fields.DeliveryType == nil:
		return apperr.New(apperr.ErrDomainValidation, "deliveryType is required")
	}
	return requireDeliveryFields(fields.DeliveryType)
}

func requireDeliveryFields(delivery *validation.DeliveryFields) error {
	if delivery.Shipping == nil {
		return apperr.New(apperr.ErrDomainValidation, "deliveryType.shipping is required")
	}
	if delivery.Pickup == nil {
		return apperr.New(apperr.ErrDomainValidation, "deliveryType.pickup is required")
	}
	return nil
}

func (r *ListingRepositoryImpl) validateListing(listing *models.Listing) error {
	err := r.validate.Struct(listing)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.ErrDomainValidation, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Newf(apperr.ErrDomainValidation, "%s is required", fe.Field())
	case "min":
		return apperr.Newf(apperr.ErrDomainValidation, "%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return apperr.Newf(apperr.ErrDomainValidation, "%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gte":
		return apperr.Newf(apperr.ErrDomainValidation, "%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return apperr.Newf(apperr.ErrDomainValidation, "%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return apperr.Newf(apperr.ErrDomainValidation, "%s must be one of: %s", fe.Field(), strings.Join(models.Categories, ", "))
	default:
		return apperr.Newf(apperr.ErrDomainValidation, "%s is invalid", fe.Field())
	}
}
