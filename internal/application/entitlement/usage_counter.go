package entitlement

import (
	"context"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
	domain "github.com/friendaudit/backend/internal/domain/entitlement"
	"go.uber.org/zap"
)

// UsageCounter computes windowed usage from the activity log.
// Every call is a cold recomputation; nothing is accumulated between calls.
type UsageCounter struct {
	activities activity.ActivityRepository
	location   *time.Location
	metrics    Metrics
	logger     *zap.Logger
}

// NewUsageCounter creates a new UsageCounter. The calendar day used for
// daily quotas is taken in location; nil means time.Local.
func NewUsageCounter(activities activity.ActivityRepository, location *time.Location, metrics Metrics, logger *zap.Logger) *UsageCounter {
	if location == nil {
		location = time.Local
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &UsageCounter{
		activities: activities,
		location:   location,
		metrics:    metrics,
		logger:     logger,
	}
}

// ComputeUsage counts userID's activity at now. Any failing query makes
// the whole result zero and reports degraded=true; a complete count
// returns degraded=false.
func (c *UsageCounter) ComputeUsage(ctx context.Context, userID string, now time.Time) (usage domain.UsageStats, degraded bool) {
	weekStart := domain.RollingWeekStart(now)
	dayStart := domain.CalendarDayStart(now, c.location)

	audits, err := c.activities.Count(ctx, activity.ForUser(userID).WithSince(weekStart))
	if err != nil {
		return c.failOpen(ctx, userID, "audits_this_week", err)
	}

	textSince := dayStart
	if textSince.Before(weekStart) {
		textSince = weekStart
	}
	analyses, err := c.activities.Count(ctx, activity.ForUser(userID).
		WithSince(textSince).
		WithAuditType(activity.AuditTypeTextAnalysis))
	if err != nil {
		return c.failOpen(ctx, userID, "text_analyses_today", err)
	}

	friends, err := c.activities.CountDistinctFriends(ctx, userID)
	if err != nil {
		return c.failOpen(ctx, userID, "saved_friends", err)
	}

	return domain.UsageStats{
		AuditsThisWeek:    int(audits),
		TextAnalysesToday: int(analyses),
		SavedFriends:      int(friends),
	}, false
}

func (c *UsageCounter) failOpen(ctx context.Context, userID, query string, err error) (usage domain.UsageStats, degraded bool) {
	c.logger.Warn("Failed to compute usage, assuming zero usage",
		zap.String("user_id", userID),
		zap.String("query", query),
		zap.Error(err))
	c.metrics.RecordUsageFailure(ctx)
	return domain.ZeroUsage, true
}
