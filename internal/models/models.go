package models

import (
	"time"
)

// Categories a listing can be filed under.
var Categories = []string{"computers", "electronics", "cars", "pets", "food", "drinks"}

type Seller struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type Location struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type DeliveryType struct {
	Shipping bool `json:"shipping"`
	Pickup   bool `json:"pickup"`
}

// Listing is a marketplace post. Seller and Location are snapshots of the
// creating user taken at creation time and never change afterwards, even if
// the user later edits their profile.
type Listing struct {
	ListingID    string       `json:"id" validate:"required"`
	Title        string       `json:"title" validate:"required,min=8,max=25"`
	Description  string       `json:"description" validate:"required"`
	Category     string       `json:"category" validate:"required,oneof=computers electronics cars pets food drinks"`
	AskingPrice  float64      `json:"askingPrice" validate:"required,gte=1,lte=9999999"`
	DeliveryType DeliveryType `json:"deliveryType"`
	Seller       Seller       `json:"seller"`
	Location     Location     `json:"location"`
	ImageURLs    []string     `json:"imageUrls" validate:"max=4"`
	Posted       time.Time    `json:"posted"`
}

type User struct {
	UserID       string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	BirthDate    time.Time `json:"birthDate"`
	Address      Location  `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated actor extracted from a bearer token.
type Principal struct {
	UserID   string
	Username string
}

// SearchFilter is a conjunction of optional listing filters. Zero or more
// fields may be set; an empty filter matches nothing, not everything.
type SearchFilter struct {
	Country    string
	City       string
	Category   string
	PostedDate string
}

func (f SearchFilter) Empty() bool {
	return f.Country == "" && f.City == "" && f.Category == "" && f.PostedDate == ""
}
