package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/model"
)

// DashboardService serves the statistics shown on /dashboard. Admins get site-wide
// counts, readers get their own reading figures.
type DashboardService struct {
	resource
}

func NewDashboardService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{resource: newResource(api, store, ttl, log, "dashboard_service")}
}

// AdminStats returns site-wide counts. Shared by every admin.
func (s *DashboardService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	var stats model.AdminStats
	if _, err := s.query(ctx, config.ScopeAdmin, "/stats", nil, &stats, cache.TagStats); err != nil {
		return nil, err
	}
	if stats.GenreDistribution == nil {
		stats.GenreDistribution = []model.GenreShare{}
	}
	return &stats, nil
}

// UserStats returns the session owner's reading figures.
func (s *DashboardService) UserStats(ctx context.Context, sess *gate.Session) (*model.UserStats, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	var stats model.UserStats
	_, err := s.queryUser(ctx, sess, "/stats", nil, &stats, cache.TagStats)
	if err != nil {
		return nil, err
	}
	stats.GoalPercentage = GoalPercentage(stats.BooksReadThisYear, stats.AnnualGoal)
	if stats.MonthlyStats == nil {
		stats.MonthlyStats = []model.MonthlyStat{}
	}
	return &stats, nil
}

// Stats picks the figures matching the session's role.
func (s *DashboardService) Stats(ctx context.Context, sess *gate.Session) (any, error) {
	if sess.IsAdmin() {
		return s.AdminStats(ctx)
	}
	return s.UserStats(ctx, sess)
}

// GoalPercentage is read/goal as a whole percentage capped at 100. No goal means 0.
func GoalPercentage(read, goal int) int {
	if goal <= 0 || read <= 0 {
		return 0
	}
	pct := int(math.Round(float64(read) / float64(goal) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}
