package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptly-app/promptly/backend/internal/model/user"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service manages user records: created at signup, read at login, never
// updated within this service's scope.
type Service struct {
	db *gorm.DB
}

// NewService wraps the injected database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Signup creates a new user with a fresh owner id and a bcrypt password hash.
func (s *Service) Signup(ctx context.Context, email, password, firstName, lastName string) (user.User, error) {
	var existing user.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return user.User{}, ErrEmailTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return user.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	account := user.User{
		UID:       uuid.NewString(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := account.SetPassword(password); err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return account, nil
}

// Login verifies the supplied secret against the stored hash. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, error) {
	var account user.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !account.CheckPassword(password) {
		return user.User{}, ErrInvalidCredentials
	}
	return account, nil
}
