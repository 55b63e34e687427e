package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atlas-crm/atlas-crm/internal/analytics"
	"github.com/atlas-crm/atlas-crm/internal/dashboard"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type stubRepo struct {
	calls   int
	summary dashboard.Summary
}

func (r *stubRepo) Summary(ctx context.Context) (*dashboard.Summary, error) {
	r.calls++
	s := r.summary
	return &s, nil
}

func TestSummaryCachedAcrossCalls(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := analytics.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	repo := &stubRepo{summary: dashboard.Summary{TotalUsers: 15847, PendingOrders: 156, MonthlyGrowth: 12.5}}
	svc := dashboard.NewService(repo, cache)
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 15847, first.TotalUsers)
	require.Equal(t, 12.5, first.MonthlyGrowth)

	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	// A CRM write bumps the shared version and forces a recompute.
	require.NoError(t, cache.Bump(ctx))
	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestWarmPrimesSummary(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := analytics.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	repo := &stubRepo{}
	svc := dashboard.NewService(repo, cache)
	ctx := context.Background()

	require.NoError(t, svc.Warm(ctx))
	_, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
}
