package analytics

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"golang.org/x/sync/singleflight"
)

// RepositoryPort defines the aggregate queries the service depends on.
type RepositoryPort interface {
	MonthlyRevenue(ctx context.Context) ([]MonthlyPoint, error)
	MonthlySignups(ctx context.Context) ([]MonthlyPoint, error)
	SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error)
}

// Service serves chart series and reports through the versioned cache.
// Concurrent cold-cache requests for the same key collapse into a single
// database round trip.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Revenue returns the trailing revenue series.
func (s *Service) Revenue(ctx context.Context) (*RevenueSeries, error) {
	var out RevenueSeries
	if err := s.fetch(ctx, keyRevenue(), &out, func(ctx context.Context) (interface{}, error) {
		points, err := s.repo.MonthlyRevenue(ctx)
		if err != nil {
			return nil, err
		}
		series := RevenueSeries{Months: make([]string, 0, len(points)), Revenue: make([]float64, 0, len(points))}
		for _, p := range points {
			series.Months = append(series.Months, p.Month)
			series.Revenue = append(series.Revenue, round2(p.Value))
			series.TotalRevenue += p.Value
		}
		series.TotalRevenue = round2(series.TotalRevenue)
		if len(points) > 0 {
			series.AverageMonthly = round2(series.TotalRevenue / float64(len(points)))
		}
		return series, nil
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users returns the trailing signup series.
func (s *Service) Users(ctx context.Context) (*UserSeries, error) {
	var out UserSeries
	if err := s.fetch(ctx, keyUsers(), &out, func(ctx context.Context) (interface{}, error) {
		points, err := s.repo.MonthlySignups(ctx)
		if err != nil {
			return nil, err
		}
		series := UserSeries{Months: make([]string, 0, len(points)), NewUsers: make([]int, 0, len(points))}
		for _, p := range points {
			series.Months = append(series.Months, p.Month)
			series.NewUsers = append(series.NewUsers, int(p.Value))
			series.TotalNewUsers += int(p.Value)
		}
		if len(points) > 0 {
			series.AverageMonthly = round2(float64(series.TotalNewUsers) / float64(len(points)))
		}
		return series, nil
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sales returns the report for the inclusive date range.
func (s *Service) Sales(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	var out SalesReport
	key := keySales(start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err := s.fetch(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		report, err := s.repo.SalesReport(ctx, start, end)
		if err != nil {
			return nil, err
		}
		report.TotalSales = round2(report.TotalSales)
		report.AverageOrderValue = round2(report.AverageOrderValue)
		return report, nil
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Warm precomputes the chart series so the first request after an
// invalidation does not pay the query cost.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.Revenue(ctx); err != nil {
		return err
	}
	_, err := s.Users(ctx)
	return err
}

func (s *Service) fetch(ctx context.Context, baseKey string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, baseKey)
	if err != nil {
		return err
	}
	// The flight carries raw JSON so every waiter can unmarshal into its
	// own destination.
	result := s.group.DoChan(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
