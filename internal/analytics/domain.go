package analytics

// MonthlyPoint is one month of an aggregate series.
type MonthlyPoint struct {
	Month string
	Value float64
}

// RevenueSeries is the trailing revenue aggregate for the admin charts.
type RevenueSeries struct {
	Months         []string  `json:"months"`
	Revenue        []float64 `json:"revenue"`
	TotalRevenue   float64   `json:"total_revenue"`
	AverageMonthly float64   `json:"average_monthly"`
}

// UserSeries is the trailing signup aggregate for the admin charts.
type UserSeries struct {
	Months         []string `json:"months"`
	NewUsers       []int    `json:"new_users"`
	TotalNewUsers  int      `json:"total_new_users"`
	AverageMonthly float64  `json:"average_monthly"`
}

// CategorySales is sales volume attributed to one catalog category.
type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

// SellerSales is sales volume attributed to one seller.
type SellerSales struct {
	Seller string  `json:"seller"`
	Sales  float64 `json:"sales"`
}

// SalesReport summarises order activity over a date range.
type SalesReport struct {
	Period               string          `json:"period"`
	TotalSales           float64         `json:"total_sales"`
	TotalOrders          int             `json:"total_orders"`
	AverageOrderValue    float64         `json:"average_order_value"`
	TopSellingCategories []CategorySales `json:"top_selling_categories"`
	TopSellers           []SellerSales   `json:"top_sellers"`
}
