package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength = 254
	minEmailLength = 3
	bcryptCost     = 12
)

var (
	ErrInvalidEmail       = fmt.Errorf("email address is not valid")
	ErrEmailLength        = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInternalError      = errors.New("internal Server Error")
)

type RegisterRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	FullName          string `json:"full_name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investment_goals"`
	RiskTolerance     string `json:"risk_tolerance"`
	PreferredIndustry string `json:"preferred_industry"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	VerifyPassword(user *User, password string) error
	ListForNewsDelivery(ctx context.Context) ([]NewsRecipient, error)
	Resolver
}

type service struct {
	repo Repository
}

func NewUserService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, errors.New("full name is required")
	}

	_, err := s.repo.getUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, ErrInternalError
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return nil, ErrInternalError
	}

	newUser := &User{
		Email:             email,
		FullName:          fullName,
		PasswordHash:      passwordHash,
		Country:           strings.TrimSpace(req.Country),
		InvestmentGoals:   strings.TrimSpace(req.InvestmentGoals),
		RiskTolerance:     strings.TrimSpace(req.RiskTolerance),
		PreferredIndustry: strings.TrimSpace(req.PreferredIndustry),
	}
	if err := s.repo.createUser(ctx, newUser); err != nil {
		return nil, ErrInternalError
	}

	return newUser, nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.getUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *service) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.getUserByID(ctx, id)
}

func (s *service) VerifyPassword(user *User, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
}

func (s *service) ListForNewsDelivery(ctx context.Context) ([]NewsRecipient, error) {
	return s.repo.listForNewsDelivery(ctx)
}
