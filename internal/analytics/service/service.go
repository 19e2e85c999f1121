// Package service aggregates lead statistics per acquisition source.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leadnest/internal/analytics/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDays = 30
	MinDays     = 1
	MaxDays     = 365

	// TrendDays is the fixed length of every source trend.
	TrendDays = 7

	trendConcurrency = 4
	dateLayout       = "2006-01-02"
)

type Repository interface {
	SourceStats(ctx context.Context, businessID uuid.UUID, since time.Time) ([]repository.SourceRow, error)
	CreatedSince(ctx context.Context, businessID uuid.UUID, source string, since time.Time) ([]time.Time, error)
}

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// New creates the service. Trend days follow the server's local time zone.
func New(repo Repository) *Service {
	return &Service{repo: repo, loc: time.Local, now: time.Now}
}

type SourceStat struct {
	Source         string
	Total          int
	Booked         int
	ConversionRate float64
	AvgDealValue   decimal.Decimal
}

type TrendPoint struct {
	Date  string
	Count int
}

type Report struct {
	Sources      []SourceStat
	SourceTrends map[string][]TrendPoint
	Period       string
	TotalSources int
	Timestamp    time.Time
}

// ClampDays bounds the reporting window.
func ClampDays(days int) int {
	if days < MinDays {
		return MinDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// Sources builds the per-source report for the trailing window of days.
func (s *Service) Sources(ctx context.Context, scope tenant.Scope, days int) (Report, error) {
	days = ClampDays(days)
	now := s.now()

	rows, err := s.repo.SourceStats(ctx, scope.BusinessID, now.AddDate(0, 0, -days))
	if err != nil {
		return Report{}, apperr.Internal("analytics.sources", err)
	}

	stats := make([]SourceStat, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, SourceStat{
			Source:         r.Source,
			Total:          r.Total,
			Booked:         r.Booked,
			ConversionRate: ConversionRate(r.Total, r.Booked),
			AvgDealValue:   AverageDealValue(r.QualificationNotes),
		})
	}

	trends, err := s.trends(ctx, scope.BusinessID, stats, now)
	if err != nil {
		return Report{}, apperr.Internal("analytics.trends", err)
	}

	return Report{
		Sources:      stats,
		SourceTrends: trends,
		Period:       fmt.Sprintf("%d days", days),
		TotalSources: len(stats),
		Timestamp:    now,
	}, nil
}

func (s *Service) trends(ctx context.Context, businessID uuid.UUID, stats []SourceStat, now time.Time) (map[string][]TrendPoint, error) {
	start := startOfDay(now.In(s.loc)).AddDate(0, 0, -(TrendDays - 1))
	trends := make(map[string][]TrendPoint, len(stats))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trendConcurrency)
	for _, st := range stats {
		source := st.Source
		g.Go(func() error {
			created, err := s.repo.CreatedSince(gctx, businessID, source, start)
			if err != nil {
				return fmt.Errorf("trend for %s: %w", source, err)
			}
			points := fillTrend(start, created)
			mu.Lock()
			trends[source] = points
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trends, nil
}

// fillTrend counts created per calendar day in start's location, one point
// per day starting at start, with zero for days that had no leads.
func fillTrend(start time.Time, created []time.Time) []TrendPoint {
	byDay := make(map[string]int, TrendDays)
	for _, t := range created {
		byDay[t.In(start.Location()).Format(dateLayout)]++
	}
	points := make([]TrendPoint, TrendDays)
	for i := range points {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		points[i] = TrendPoint{Date: day, Count: byDay[day]}
	}
	return points
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
