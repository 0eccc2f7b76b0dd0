// Package service provides the business service behind the HTTP API and
// the CLI: roster CRUD, admin login and the ranking views.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/stride/internal/adapters/repository"
	"github.com/okian/stride/internal/auth"
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/ranking"
	"github.com/okian/stride/pkg/logger"
)

// Service implements the API dependencies for the results system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	builder *ranking.Builder
	issuer  *auth.Issuer
	creds   auth.Credentials

	// Configuration
	rankingOpts  []ranking.Option
	fetchTimeout time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the roster store. Defaults to an empty in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRankingOptions configures categories, placeholder and tie-break.
func WithRankingOptions(opts ...ranking.Option) Option {
	return func(s *Service) {
		s.rankingOpts = append(s.rankingOpts, opts...)
	}
}

// WithFetchTimeout bounds the concurrent store reads behind one view.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithIssuer sets the admin token issuer.
func WithIssuer(issuer *auth.Issuer) Option {
	return func(s *Service) {
		if issuer != nil {
			s.issuer = issuer
		}
	}
}

// WithCredentials sets the admin account.
func WithCredentials(creds auth.Credentials) Option {
	return func(s *Service) {
		s.creds = creds
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		fetchTimeout: 5 * time.Second,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Default().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemStore(repository.WithLogger(s.logger))
	}
	s.builder = ranking.NewBuilder(s.rankingOpts...)

	return s
}

// Start verifies the store is reachable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "results service started",
		logger.Any("categories", s.builder.Categories()),
		logger.Duration("fetchTimeout", s.fetchTimeout),
		logger.Bool("loginEnabled", s.issuer != nil && s.creds.Password != ""),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "results service stopped")
}

// Categories returns the leaderboard categories in display order.
func (s *Service) Categories() []model.Category {
	return s.builder.Categories()
}

// Ping reports store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
