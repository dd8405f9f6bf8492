package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/internal/repository"
	"github.com/opdbook/booking-api/pkg/auth"
	"github.com/opdbook/booking-api/pkg/errors"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	resetTokenTTL    = time.Hour
	bcryptCost       = 12
)

// Service authenticates clinic staff for the admin endpoints.
type Service struct {
	users  repository.AdminUserRepository
	jwt    auth.JWTService
	logger *zerolog.Logger
}

func NewService(users repository.AdminUserRepository, jwt auth.JWTService, logger *zerolog.Logger) *Service {
	return &Service{users: users, jwt: jwt, logger: logger}
}

// Login checks credentials and issues an access token. Five consecutive
// failures lock the account; the lock releases on its own after the lockout
// window.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if stderrors.Is(err, repository.ErrNotFound) {
		// burn a hash comparison so a missing account costs the same as a
		// wrong password
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$12$000000000000000000000uGZLKPKvYkpYWBnnjTEQcJLqLHhnOW6a"), []byte(req.Password))
		return nil, errors.NewUnauthorized(nil)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if user.Status == model.AdminStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			return nil, errors.NewUnauthorized(fmt.Errorf("account locked"))
		}
		user.Status = model.AdminStatusActive
		user.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.AdminStatusLocked
			s.logger.Warn().Str("email", user.Email).Msg("Admin account locked after repeated failures")
		}
		if uerr := s.users.Update(ctx, user); uerr != nil {
			s.logger.Error().Err(uerr).Str("email", user.Email).Msg("Failed to record login attempt")
		}
		return nil, errors.NewUnauthorized(nil)
	}

	now := time.Now()
	user.LoginAttempts = 0
	user.LastLoginAttempt = now
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to record login")
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.Expiry().Seconds()),
	}, nil
}

// RequestPasswordReset issues a one-time reset token. The response is the
// same whether or not the address exists, so the endpoint cannot be used to
// enumerate accounts; the token itself goes out through the email channel.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if stderrors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.NewInternal(err)
	}
	token := hex.EncodeToString(buf)

	if err := s.users.StoreResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return "", errors.NewInternal(err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and installs the new password. A used
// or expired token is indistinguishable from an invalid one.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	userID, err := s.users.ValidateResetToken(ctx, req.Token)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewUnauthorized(fmt.Errorf("invalid or expired reset token"))
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Validate checks a bearer token; the admin middleware delegates here.
func (s *Service) Validate(token string) (*auth.TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, errors.NewUnauthorized(err)
	}
	return claims, nil
}
