package repository

import (
	"time"

	"github.com/lib/pq"

	"tradepost/internal/models"
)

// listingRow is the flattened table shape of a listing. The nested domain
// structs (seller, location, deliveryType) map to prefixed columns.
type listingRow struct {
	ListingID          string         `db:"listing_id"`
	Title              string         `db:"title"`
	Description        string         `db:"description"`
	Category           string         `db:"category"`
	AskingPrice        float64        `db:"asking_price"`
	Shipping           bool           `db:"shipping"`
	Pickup             bool           `db:"pickup"`
	SellerUsername     string         `db:"seller_username"`
	SellerEmail        string         `db:"seller_email"`
	SellerPhoneNumber  string         `db:"seller_phone_number"`
	LocationCountry    string         `db:"location_country"`
	LocationCity       string         `db:"location_city"`
	LocationPostalCode string         `db:"location_postal_code"`
	ImageURLs          pq.StringArray `db:"image_urls"`
	Posted             time.Time      `db:"posted"`
}

func (r listingRow) toModel() models.Listing {
	return models.Listing{
		ListingID:   r.ListingID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		AskingPrice: r.AskingPrice,
		DeliveryType: models.DeliveryType{
			Shipping: r.Shipping,
			Pickup:   r.Pickup,
		},
		Seller: models.Seller{
			Username:    r.SellerUsername,
			Email:       r.SellerEmail,
			PhoneNumber: r.SellerPhoneNumber,
		},
		Location: models.Location{
			Country:    r.LocationCountry,
			City:       r.LocationCity,
			PostalCode: r.LocationPostalCode,
		},
		ImageURLs: []string(r.ImageURLs),
		Posted:    r.Posted,
	}
}

func listingToRow(listing *models.Listing) listingRow {
	return listingRow{
		ListingID:          listing.ListingID,
		Title:              listing.Title,
		Description:        listing.Description,
		Category:           listing.Category,
		AskingPrice:        listing.AskingPrice,
		Shipping:           listing.DeliveryType.Shipping,
		Pickup:             listing.DeliveryType.Pickup,
		SellerUsername:     listing.Seller.Username,
		SellerEmail:        listing.Seller.Email,
		SellerPhoneNumber:  listing.Seller.PhoneNumber,
		LocationCountry:    listing.Location.Country,
		LocationCity:       listing.Location.City,
		LocationPostalCode: listing.Location.PostalCode,
		ImageURLs:          pq.StringArray(listing.ImageURLs),
		Posted:             listing.Posted,
	}
}

type userRow struct {
	UserID            string    `db:"user_id"`
	Username          string    `db:"username"`
	Email             string    `db:"email"`
	PhoneNumber       string    `db:"phone_number"`
	PasswordHash      string    `db:"password_hash"`
	BirthDate         time.Time `db:"birth_date"`
	AddressCountry    string    `db:"address_country"`
	AddressCity       string    `db:"address_city"`
	AddressPostalCode string    `db:"address_postal_code"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r userRow) toModel() models.User {
	return models.User{
		UserID:       r.UserID,
		Username:     r.Username,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		PasswordHash: r.PasswordHash,
		BirthDate:    r.BirthDate,
		Address: models.Location{
			Country:    r.AddressCountry,
			City:       r.AddressCity,
			PostalCode: r.AddressPostalCode,
		},
		CreatedAt: r.CreatedAt,
	}
}
