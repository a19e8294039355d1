package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"tradepost/internal/apperr"
	"tradepost/internal/models"
)

const bcryptCost = 10

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

const insertUserQuery = `
	INSERT INTO users
	(user_id, username, email, phone_number, password_hash, birth_date,
	 address_country, address_city, address_postal_code, created_at)
	VALUES
	(:user_id, :username, :email, :phone_number, :password_hash, :birth_date,
	 :address_country, :address_city, :address_postal_code, :created_at)
`

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to hash password: %w", err))
	}
	user.PasswordHash = string(hash)

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	row := userRow{
		UserID:            user.UserID,
		Username:          user.Username,
		Email:             user.Email,
		PhoneNumber:       user.PhoneNumber,
		PasswordHash:      user.PasswordHash,
		BirthDate:         user.BirthDate,
		AddressCountry:    user.Address.Country,
		AddressCity:       user.Address.City,
		AddressPostalCode: user.Address.PostalCode,
		CreatedAt:         user.CreatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, insertUserQuery, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return apperr.Newf(apperr.ErrConflict, "%s already in use", fieldFromConstraint(pqErr.Constraint))
		}
		return apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to create user: %w", err))
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperr.New(apperr.ErrNotFound, "")
	}

	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "")
		}
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to get user: %w", err))
	}

	user := row.toModel()
	return &user, nil
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "")
		}
		return nil, apperr.Wrap(apperr.ErrStorage, fmt.Errorf("failed to get user: %w", err))
	}

	user := row.toModel()
	return &user, nil
}

// fieldFromConstraint recovers the column name from a unique constraint
// named in the postgres default style, e.g. "users_username_key".
func fieldFromConstraint(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	name = strings.TrimPrefix(name, "users_")
	if name == "" {
		return "value"
	}
	return name
}
