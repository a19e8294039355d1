package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradepost/internal/apperr"
	"tradepost/internal/models"
	"tradepost/internal/repository"
	"tradepost/internal/validation"
)

type UserService interface {
	Register(ctx context.Context, payload []byte) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, log *zap.Logger) UserService {
	return &userService{users: users, log: log}
}

func (s *userService) Register(ctx context.Context, payload []byte) (*models.User, error) {
	fields, err := validation.ParseUserFields(payload)
	if err != nil {
		return nil, err
	}

	switch {
	case fields.Username == nil || *fields.Username == "":
		return nil, apperr.New(apperr.ErrDomainValidation, "username is required")
	case fields.Email == nil || *fields.Email == "":
		return nil, apperr.New(apperr.ErrDomainValidation, "email is required")
	case fields.Password == nil || *fields.Password == "":
		return nil, apperr.New(apperr.ErrDomainValidation, "password is required")
	}

	user := &models.User{
		Username: *fields.Username,
		Email:    *fields.Email,
	}
	if fields.PhoneNumber != nil {
		user.PhoneNumber = *fields.PhoneNumber
	}
	if fields.BirthDate != nil {
		birthDate, err := time.Parse("2006-01-02", *fields.BirthDate)
		if err != nil {
			return nil, apperr.New(apperr.ErrDomainValidation, "birthDate must be in YYYY-MM-DD format")
		}
		user.BirthDate = birthDate
	}
	if fields.Address != nil {
		if fields.Address.Country != nil {
			user.Address.Country = *fields.Address.Country
		}
		if fields.Address.City != nil {
			user.Address.City = *fields.Address.City
		}
		if fields.Address.PostalCode != nil {
			user.Address.PostalCode = *fields.Address.PostalCode
		}
	}

	if err := s.users.Create(ctx, user, *fields.Password); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("username", user.Username))
	return user, nil
}
