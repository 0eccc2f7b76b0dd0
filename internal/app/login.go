package service

import (
	"context"
	"fmt"

	"github.com/okian/stride/internal/auth"
	"github.com/okian/stride/pkg/logger"
	"github.com/okian/stride/pkg/metrics"
)

// Login checks the admin credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (string, auth.Claims, error) {
	if s.issuer == nil || s.creds.Password == "" {
		metrics.RecordLoginAttempt("disabled")
		return "", auth.Claims{}, ErrLoginDisabled
	}
	if err := s.creds.Check(username, password); err != nil {
		metrics.RecordLoginAttempt("denied")
		s.logger.Warn(ctx, "login denied", logger.String("username", username))
		return "", auth.Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	token, claims := s.issuer.Issue(username)
	metrics.RecordLoginAttempt("success")
	s.logger.Info(ctx, "admin logged in", logger.String("username", username))
	return token, claims, nil
}

// Authorize validates a bearer token issued by Login.
func (s *Service) Authorize(_ context.Context, token string) (auth.Claims, error) {
	if s.issuer == nil {
		return auth.Claims{}, ErrLoginDisabled
	}
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}
