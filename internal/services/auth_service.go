package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
	"github.com/bharatnilam/my-laravel-api-2/internal/storage"
	"github.com/bharatnilam/my-laravel-api-2/internal/validation"
)

type authServiceImpl struct {
	logger      zerolog.Logger
	users       storage.UserStore
	tokens      storage.TokenStore
	tokenLength int
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserStore,
	tokens storage.TokenStore,
	tokenLength int,
) AuthService {
	return &authServiceImpl{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		tokenLength: tokenLength,
	}
}

func loginRules() []validation.Rule {
	return []validation.Rule{
		{Field: "email", Required: true, Email: true},
		{Field: "password", Required: true},
	}
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	fields := validation.Fields{
		"email":    {Value: params.Email},
		"password": {Value: params.Password},
	}
	if errs := validation.Check(loginRules(), fields, validation.Strict); errs.Any() {
		s.logger.Warn().
			Int("fields", len(errs)).
			Msg("rejected login payload")
		return nil, &ValidationError{Fields: errs}
	}

	user, err := s.users.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("email", params.Email).
				Msg("login for unknown email")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Msg("failed to fetch user by email")
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	}
	if !match {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	secret, err := s.generateTokenSecret()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate token secret")
		return nil, err
	}

	_, err = s.tokens.CreateToken(ctx, &models.AuthToken{
		UserID:    user.ID,
		TokenHash: hashTokenSecret(secret),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to persist token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return &LoginResult{
		User:  user,
		Token: secret,
	}, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	record, err := s.tokens.GetTokenByHash(ctx, hashTokenSecret(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to resolve token")
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("user_id", record.UserID).
				Msg("token bound to a missing user")
			return nil, ErrInvalidToken
		}

		s.logger.Error().
			Err(err).
			Str("user_id", record.UserID).
			Msg("failed to fetch token user")
		return nil, err
	}

	return user, nil
}

func (s *authServiceImpl) generateTokenSecret() (string, error) {
	bytes := make([]byte, s.tokenLength)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func hashTokenSecret(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}
