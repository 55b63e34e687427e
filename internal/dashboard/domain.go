package dashboard

// Summary is the headline figure set on the admin landing page.
type Summary struct {
	TotalUsers       int     `json:"total_users"`
	TotalSellers     int     `json:"total_sellers"`
	TotalOrders      int     `json:"total_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
	MonthlyGrowth    float64 `json:"monthly_growth"`
	ActiveUsersToday int     `json:"active_users_today"`
	PendingOrders    int     `json:"pending_orders"`
	RefundRequests   int     `json:"refund_requests"`
}
