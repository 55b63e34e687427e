package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/atlas-crm/atlas-crm/testing"
)

type fakeStore struct {
	count int64
	err   error
}

func (f *fakeStore) CleanupSessions(ctx context.Context) (int64, error) {
	return f.count, f.err
}

type fakeWarmer struct {
	calls int
	err   error
}

func (f *fakeWarmer) Warm(ctx context.Context) error {
	f.calls++
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleSessionCleanup(t *testing.T) {
	handler := HandleSessionCleanup(discardLogger(), &fakeStore{count: 3})
	require.NoError(t, handler(context.Background(), NewSessionCleanupTask()))

	handler = HandleSessionCleanup(discardLogger(), &fakeStore{err: errors.New("pg down")})
	require.Error(t, handler(context.Background(), NewSessionCleanupTask()))
}

func TestHandleAnalyticsWarmupRunsAllWarmers(t *testing.T) {
	first := &fakeWarmer{}
	second := &fakeWarmer{}
	handler := HandleAnalyticsWarmup(discardLogger(), first, second)
	require.NoError(t, handler(context.Background(), NewAnalyticsWarmupTask()))
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
}

func TestHandleAnalyticsWarmupFailsForRetry(t *testing.T) {
	first := &fakeWarmer{err: errors.New("redis down")}
	second := &fakeWarmer{}
	handler := HandleAnalyticsWarmup(discardLogger(), first, second)
	require.Error(t, handler(context.Background(), NewAnalyticsWarmupTask()))
	require.Equal(t, 0, second.calls)
}
