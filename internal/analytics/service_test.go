package analytics_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atlas-crm/atlas-crm/internal/analytics"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type stubRepo struct {
	revenueCalls atomic.Int64
	signupCalls  atomic.Int64
}

func (r *stubRepo) MonthlyRevenue(ctx context.Context) ([]analytics.MonthlyPoint, error) {
	r.revenueCalls.Add(1)
	return []analytics.MonthlyPoint{
		{Month: "2025-07", Value: 1000},
		{Month: "2025-08", Value: 3000.456},
	}, nil
}

func (r *stubRepo) MonthlySignups(ctx context.Context) ([]analytics.MonthlyPoint, error) {
	r.signupCalls.Add(1)
	return []analytics.MonthlyPoint{
		{Month: "2025-07", Value: 40},
		{Month: "2025-08", Value: 60},
	}, nil
}

func (r *stubRepo) SalesReport(ctx context.Context, start, end time.Time) (*analytics.SalesReport, error) {
	return &analytics.SalesReport{
		Period:      start.Format("2006-01-02") + " to " + end.Format("2006-01-02"),
		TotalSales:  1234.567,
		TotalOrders: 10,
	}, nil
}

func newService(t *testing.T) (*analytics.Service, *stubRepo, *analytics.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := analytics.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	repo := &stubRepo{}
	return analytics.NewService(repo, cache), repo, cache
}

func TestRevenueSeriesComputed(t *testing.T) {
	svc, _, _ := newService(t)

	series, err := svc.Revenue(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2025-07", "2025-08"}, series.Months)
	require.Equal(t, []float64{1000, 3000.46}, series.Revenue)
	require.Equal(t, 4000.46, series.TotalRevenue)
	require.Equal(t, 2000.23, series.AverageMonthly)
}

func TestRevenueCachedUntilBump(t *testing.T) {
	svc, repo, cache := newService(t)
	ctx := context.Background()

	_, err := svc.Revenue(ctx)
	require.NoError(t, err)
	_, err = svc.Revenue(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.revenueCalls.Load())

	require.NoError(t, cache.Bump(ctx))
	_, err = svc.Revenue(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.revenueCalls.Load())
}

func TestUserSeriesComputed(t *testing.T) {
	svc, _, _ := newService(t)

	series, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{40, 60}, series.NewUsers)
	require.Equal(t, 100, series.TotalNewUsers)
	require.Equal(t, 50.0, series.AverageMonthly)
}

func TestSalesReportRounded(t *testing.T) {
	svc, _, _ := newService(t)

	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	report, err := svc.Sales(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, "2025-08-01 to 2025-08-31", report.Period)
	require.Equal(t, 1234.57, report.TotalSales)
}

func TestWarmPrimesBothSeries(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Warm(ctx))
	_, err := svc.Revenue(ctx)
	require.NoError(t, err)
	_, err = svc.Users(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.revenueCalls.Load())
	require.EqualValues(t, 1, repo.signupCalls.Load())
}
