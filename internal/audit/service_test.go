package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-crm/atlas-crm/internal/audit"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type memRepo struct {
	entries   []audit.Entry
	insertErr error
}

func (r *memRepo) Insert(ctx context.Context, actorID int64, action, entity, detail string) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.entries = append(r.entries, audit.Entry{
		ID:         int64(len(r.entries) + 1),
		ActorID:    actorID,
		Action:     action,
		Entity:     entity,
		Detail:     detail,
		RecordedAt: time.Now(),
	})
	return nil
}

func (r *memRepo) List(ctx context.Context, action string, limit, offset int) ([]audit.Entry, int, error) {
	var matched []audit.Entry
	for _, e := range r.entries {
		if action != "" && !strings.HasPrefix(e.Action, action) {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordAndList(t *testing.T) {
	repo := &memRepo{}
	svc := audit.NewService(discardLogger(), repo)
	ctx := context.Background()

	svc.Record(ctx, 1, "auth.login", "admin_user", "root")
	svc.Record(ctx, 1, "orders.status", "order", "ORD0001 -> shipped")

	entries, page, err := svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Len(t, entries, 2)
}

func TestListActionFilter(t *testing.T) {
	repo := &memRepo{}
	svc := audit.NewService(discardLogger(), repo)
	ctx := context.Background()

	svc.Record(ctx, 1, "auth.login", "admin_user", "root")
	svc.Record(ctx, 2, "accounts.create", "admin_user", "newmod")

	entries, page, err := svc.List(ctx, "accounts", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "accounts.create", entries[0].Action)
}

func TestRecordSwallowsStorageFailure(t *testing.T) {
	repo := &memRepo{insertErr: errors.New("socket closed")}
	svc := audit.NewService(discardLogger(), repo)

	// Must not panic or surface the error to the caller.
	svc.Record(context.Background(), 1, "auth.login", "admin_user", "root")
	require.Empty(t, repo.entries)
}
