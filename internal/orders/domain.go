package orders

import "time"

// Status is the closed set of order states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Statuses lists every valid order state in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded}
}

// ParseStatus maps a wire value onto the closed enumeration, empty on miss.
func ParseStatus(s string) Status {
	for _, st := range Statuses() {
		if s == string(st) {
			return st
		}
	}
	return Status("")
}

// Order is a marketplace order as seen by the admin panel. Reference is the
// external identifier shown to operators, e.g. ORD0042.
type Order struct {
	ID           int64
	Reference    string
	CustomerName string
	SellerName   string
	Amount       float64
	Status       Status
	PlacedAt     time.Time
	ItemsCount   int
}

// View is the wire representation of an order row.
type View struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customer_name"`
	SellerName   string  `json:"seller_name"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	OrderDate    string  `json:"order_date"`
	ItemsCount   int     `json:"items_count"`
}

// View converts the order into its wire representation.
func (o *Order) View() View {
	return View{
		ID:           o.Reference,
		CustomerName: o.CustomerName,
		SellerName:   o.SellerName,
		Amount:       o.Amount,
		Status:       string(o.Status),
		OrderDate:    o.PlacedAt.Format("2006-01-02 15:04"),
		ItemsCount:   o.ItemsCount,
	}
}
