package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/uniprbooks/backend/internal/auth"
	"github.com/uniprbooks/backend/internal/model"
	"github.com/uniprbooks/backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// that login responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

var validate = validator.New()

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) error
	// Login verifies credentials and returns a signed identity token.
	Login(ctx context.Context, in LoginInput) (string, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return ErrInvalidInput
	}
	// Byte length, not rune count: bcrypt only reads the first 72 bytes.
	if len(in.Password) > auth.MaxPasswordBytes {
		return ErrInvalidInput
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return "", ErrInvalidInput
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.CheckPassword(in.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID, user.Email)
}
