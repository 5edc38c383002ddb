package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"studentrecords/internal/auth"
	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/logger"
	"studentrecords/internal/model"
	"studentrecords/internal/repository"
)

// BcryptCost is the cost used when hashing user passwords.
const BcryptCost = 10

// LoginResult is returned by a successful authentication.
type LoginResult struct {
	User  model.UserView `json:"user"`
	Token string         `json:"token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, userID uint) (string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	throttle   auth.LoginThrottle
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, throttle auth.LoginThrottle) AuthService {
	if throttle == nil {
		throttle = auth.NewLoginLimiter(nil, 0, 0)
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		throttle:   throttle,
	}
}

// Authenticate verifies credentials and issues a token. Unknown emails and
// wrong passwords fail the same way.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.From(ctx)

	if err := s.throttle.Check(ctx, email); err != nil {
		log.Warn("login throttled", zap.String("email", email))
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.throttle.RegisterFailure(ctx, email)
		log.Info("login rejected", zap.String("email", email), zap.String("reason", "unknown email"))
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.throttle.RegisterFailure(ctx, email)
		log.Info("login rejected", logger.UserID(user.ID), zap.String("reason", "password mismatch"))
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.throttle.Reset(ctx, email)

	return &LoginResult{User: user.View(), Token: token}, nil
}

// RefreshToken issues a fresh token for a user that still exists.
func (s *authService) RefreshToken(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", apperrors.Unauthorized("User not found")
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// HashPassword hashes a plain password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
