package dashboard

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository computes the dashboard figures from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summary runs the headline aggregates in one round trip.
func (r *Repository) Summary(ctx context.Context) (*Summary, error) {
	var (
		s            Summary
		thisMonth    float64
		lastMonth    float64
		totalRevenue float64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM shop_users),
			(SELECT count(*) FROM sellers),
			(SELECT count(*) FROM shop_orders),
			(SELECT COALESCE(sum(amount), 0) FROM shop_orders
			  WHERE status NOT IN ('cancelled', 'refunded')),
			(SELECT count(DISTINCT customer_id) FROM shop_orders
			  WHERE placed_at >= date_trunc('day', now())),
			(SELECT count(*) FROM shop_orders WHERE status = 'pending'),
			(SELECT count(*) FROM shop_orders
			  WHERE status = 'refunded'
			    AND updated_at >= date_trunc('month', now())),
			(SELECT COALESCE(sum(amount), 0) FROM shop_orders
			  WHERE status NOT IN ('cancelled', 'refunded')
			    AND placed_at >= date_trunc('month', now())),
			(SELECT COALESCE(sum(amount), 0) FROM shop_orders
			  WHERE status NOT IN ('cancelled', 'refunded')
			    AND placed_at >= date_trunc('month', now()) - interval '1 month'
			    AND placed_at < date_trunc('month', now()))`,
	).Scan(
		&s.TotalUsers, &s.TotalSellers, &s.TotalOrders, &totalRevenue,
		&s.ActiveUsersToday, &s.PendingOrders, &s.RefundRequests,
		&thisMonth, &lastMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	s.TotalRevenue = math.Round(totalRevenue*100) / 100
	if lastMonth > 0 {
		s.MonthlyGrowth = math.Round((thisMonth-lastMonth)/lastMonth*1000) / 10
	}
	return &s, nil
}
