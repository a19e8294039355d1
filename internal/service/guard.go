package service

import (
	"tradepost/internal/apperr"
	"tradepost/internal/models"
)

// OwnerOnly allows a mutation iff the principal is the listing's seller.
// The seller username snapshot is the sole authorization key; read
// operations never pass through here.
func OwnerOnly(principal models.Principal, listing *models.Listing) error {
	if principal.Username != listing.Seller.Username {
		return apperr.New(apperr.ErrForbidden, "")
	}
	return nil
}
