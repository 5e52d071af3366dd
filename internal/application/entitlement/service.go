package entitlement

import (
	"context"
	"time"

	domain "github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMissingUser is returned when no user identifier was supplied
var ErrMissingUser = shared.NewDomainError("UNAUTHORIZED", "User identifier is required")

// ServiceConfig contains configuration for Service
type ServiceConfig struct {
	// ReadTimeout bounds each of the two refresh reads; zero means no bound
	ReadTimeout time.Duration
	// Clock returns the evaluation time; nil means time.Now
	Clock func() time.Time
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ReadTimeout: 5 * time.Second,
		Clock:       time.Now,
	}
}

// Service owns the refresh model: it produces immutable States on explicit
// refresh, keeps the last one in a StateStore, and answers decisions from it.
type Service struct {
	fetcher *SnapshotFetcher
	counter *UsageCounter
	store   StateStore
	metrics Metrics
	logger  *zap.Logger
	config  ServiceConfig
}

// NewService creates a new Service
func NewService(
	fetcher *SnapshotFetcher,
	counter *UsageCounter,
	store StateStore,
	metrics Metrics,
	logger *zap.Logger,
	config ServiceConfig,
) *Service {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &Service{
		fetcher: fetcher,
		counter: counter,
		store:   store,
		metrics: metrics,
		logger:  logger,
		config:  config,
	}
}

// Refresh resolves the tier and computes usage for userID concurrently,
// then stores and returns the new State. Read failures never surface here:
// the tier fails closed and usage fails open. The only error is a missing
// user identifier.
func (s *Service) Refresh(ctx context.Context, userID string) (State, error) {
	if userID == "" {
		return State{}, ErrMissingUser
	}

	start := time.Now()
	now := s.config.Clock()

	var (
		resolution    Resolution
		usage         domain.UsageStats
		usageDegraded bool
	)

	// Each read degrades on its own and never returns an error, so the
	// group only joins the two goroutines and a failing read cannot cancel
	// the other one.
	var g errgroup.Group
	g.Go(func() error {
		rctx, cancel := s.readContext(ctx)
		defer cancel()
		resolution = s.fetcher.Resolve(rctx, userID)
		return nil
	})
	g.Go(func() error {
		rctx, cancel := s.readContext(ctx)
		defer cancel()
		usage, usageDegraded = s.counter.ComputeUsage(rctx, userID, now)
		return nil
	})
	_ = g.Wait()

	state := State{
		UserID:        userID,
		Loaded:        true,
		Tier:          resolution.Tier,
		Subscription:  resolution.Snapshot,
		Usage:         usage,
		RefreshedAt:   now,
		TierDegraded:  resolution.Degraded,
		UsageDegraded: usageDegraded,
	}

	if s.store != nil {
		if err := s.store.Put(ctx, state); err != nil {
			s.logger.Warn("Failed to store refreshed entitlement state",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	s.metrics.RecordRefresh(ctx, state.Tier, state.TierDegraded || state.UsageDegraded, time.Since(start))
	s.logger.Debug("Refreshed entitlement state",
		zap.String("user_id", userID),
		zap.String("tier", state.Tier.String()),
		zap.Int("audits_this_week", usage.AuditsThisWeek),
		zap.Int("text_analyses_today", usage.TextAnalysesToday),
		zap.Bool("tier_degraded", state.TierDegraded),
		zap.Bool("usage_degraded", state.UsageDegraded))

	return state, nil
}

// Current returns the last refreshed State for userID, or the loading
// state when there is none. It performs no billing or activity reads.
func (s *Service) Current(ctx context.Context, userID string) State {
	if s.store == nil || userID == "" {
		return LoadingState(userID)
	}
	state, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to read entitlement state",
			zap.String("user_id", userID),
			zap.Error(err))
		return LoadingState(userID)
	}
	if !ok {
		return LoadingState(userID)
	}
	return state
}

// Load returns the current State, running the initial refresh when none
// has been taken yet.
func (s *Service) Load(ctx context.Context, userID string) (State, error) {
	if userID == "" {
		return State{}, ErrMissingUser
	}
	if state := s.Current(ctx, userID); !state.IsLoading() {
		return state, nil
	}
	return s.Refresh(ctx, userID)
}

// Check evaluates feature for userID against the loaded State
func (s *Service) Check(ctx context.Context, userID string, feature domain.FeatureKey) (domain.Decision, error) {
	state, err := s.Load(ctx, userID)
	if err != nil {
		return domain.Decision{}, err
	}
	d := state.Decide(feature)
	s.metrics.RecordDecision(ctx, d)
	return d, nil
}

// Invalidate drops the stored State so the next Load refreshes
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, userID)
}

func (s *Service) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.ReadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.ReadTimeout)
}
