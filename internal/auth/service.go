package auth

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/mrlokans/booknotes/internal/config"
	"github.com/mrlokans/booknotes/internal/entities"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username taken")
	ErrUsernameTooShort = errors.New("username must be at least 5 characters long")
	ErrUsernameTooLong  = errors.New("username must be at most 50 characters long")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// UserStore is the persistence the service needs. Implemented by users.Repository.
type UserStore interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	UsernameExists(username string) (bool, error)
}

type registration struct {
	Username string `validate:"required,min=5,max=50"`
	Password string `validate:"required,min=6"`
}

// Service handles registration and credential checks.
type Service struct {
	users    UserStore
	validate *validator.Validate
	config   config.Auth
}

// NewService creates a new authentication service.
func NewService(users UserStore, cfg config.Auth) *Service {
	return &Service{
		users:    users,
		validate: validator.New(),
		config:   cfg,
	}
}

// Register creates a user. Checks run in this order: field lengths,
// username availability (ignoring case), password confirmation.
func (s *Service) Register(username, password, confirmation string) (*entities.User, error) {
	if err := s.validate.Struct(registration{Username: username, Password: password}); err != nil {
		return nil, registrationError(err)
	}

	taken, err := s.users.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	if password != confirmation {
		return nil, ErrPasswordMismatch
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.users.CreateUser(user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if exists, _ := s.users.UsernameExists(username); exists {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func registrationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "max" {
			return ErrUsernameTooLong
		}
		return ErrUsernameTooShort
	case "Password":
		return ErrPasswordTooShort
	}
	return err
}
