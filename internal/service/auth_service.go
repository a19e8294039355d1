package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tradepost/internal/apperr"
	"tradepost/internal/config"
	"tradepost/internal/models"
	"tradepost/internal/repository"
	"tradepost/internal/validation"
)

// AuthService is the identity provider: it turns credentials into tokens
// and tokens into principals. The listing pipeline only ever consumes the
// resulting principal.
type AuthService interface {
	Login(ctx context.Context, payload []byte) (*models.User, string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (models.Principal, error)
}

type authService struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{users: users, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, payload []byte) (*models.User, string, error) {
	fields, err := validation.ParseLoginFields(payload)
	if err != nil {
		return nil, "", err
	}
	if fields.Username == nil || fields.Password == nil {
		return nil, "", apperr.New(apperr.ErrInvalidShape, "username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, *fields.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Same answer as a wrong password; do not reveal which one it was.
			return nil, "", apperr.New(apperr.ErrUnauthenticated, "invalid username or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*fields.Password)); err != nil {
		return nil, "", apperr.New(apperr.ErrUnauthenticated, "invalid username or password")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.UserID,
		"username": user.Username,
		"exp":      time.Now().Add(s.cfg.TokenDuration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil || !token.Valid {
		return models.Principal{}, apperr.New(apperr.ErrUnauthenticated, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, apperr.New(apperr.ErrUnauthenticated, "invalid token claims")
	}
	userID, ok1 := claims["user_id"].(string)
	username, ok2 := claims["username"].(string)
	if !ok1 || !ok2 {
		return models.Principal{}, apperr.New(apperr.ErrUnauthenticated, "invalid token claims")
	}

	return models.Principal{UserID: userID, Username: username}, nil
}
