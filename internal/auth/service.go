package auth

import (
	"context"
	"errors"
	"net/http"

	emailService "github.com/mwielgus/StockWatch/internal/email"
	"github.com/mwielgus/StockWatch/internal/user"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternalError      = errors.New("internal Server Error")
)

type Service interface {
	Register(ctx context.Context, req user.RegisterRequest) (*user.User, string, error)
	Login(ctx context.Context, email, password string) (*user.User, string, error)
	SessionMiddleware() func(http.Handler) http.Handler
}

type service struct {
	userService user.Service
	jwtManager  JWTManagerInterface
	emails      emailService.EmailSender
	logger      *zap.Logger
}

func NewAuthService(userService user.Service, jwtManager JWTManagerInterface, emails emailService.EmailSender, logger *zap.Logger) Service {
	return &service{
		userService: userService,
		jwtManager:  jwtManager,
		emails:      emails,
		logger:      logger,
	}
}

func (s *service) Register(ctx context.Context, req user.RegisterRequest) (*user.User, string, error) {
	newUser, err := s.userService.Register(ctx, req)
	if err != nil {
		return nil, "", err
	}

	s.emails.QueueEmail(newUser.Email, emailService.WelcomeEmailData{
		UserName: newUser.FullName,
	})

	token, err := s.jwtManager.GenerateSessionJWT(newUser.ID, newUser.Email, defaultSessionDuration)
	if err != nil {
		s.logger.Error("could not issue session token after sign-up", zap.Error(err))
		return nil, "", ErrInternalError
	}
	return newUser, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	existingUser, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", ErrInternalError
	}

	if err := s.userService.VerifyPassword(existingUser, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateSessionJWT(existingUser.ID, existingUser.Email, defaultSessionDuration)
	if err != nil {
		s.logger.Error("could not issue session token", zap.Error(err))
		return nil, "", ErrInternalError
	}
	return existingUser, token, nil
}
