package service

import (
	"go.uber.org/zap"

	"tradepost/internal/cache"
	"tradepost/internal/config"
	"tradepost/internal/repository"
	"tradepost/internal/storage"
)

type Service struct {
	Listing ListingService
	User    UserService
	Auth    AuthService
}

func NewService(
	repo *repository.Repository,
	cfg *config.Config,
	blobs storage.BlobStorage,
	listingCache *cache.ListingCache,
	log *zap.Logger,
) *Service {
	attachments := NewAttachmentManager(blobs, log)
	return &Service{
		Listing: NewListingService(repo.Listing, repo.User, attachments, listingCache, log),
		User:    NewUserService(repo.User, log),
		Auth:    NewAuthService(repo.User, cfg),
	}
}
