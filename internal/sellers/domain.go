package sellers

import "time"

// Status is the closed set of seller states.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusSuspended Status = "suspended"
)

// ParseStatus maps a wire value onto the closed enumeration, empty on miss.
func ParseStatus(s string) Status {
	switch s {
	case string(StatusActive):
		return StatusActive
	case string(StatusPending):
		return StatusPending
	case string(StatusSuspended):
		return StatusSuspended
	default:
		return Status("")
	}
}

// Seller is a marketplace seller as seen by the admin panel.
type Seller struct {
	ID             int64
	Name           string
	Email          string
	Status         Status
	RegisteredAt   time.Time
	TotalProducts  int
	TotalSales     float64
	CommissionRate float64
}

// View is the wire representation of a seller row.
type View struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Status           string  `json:"status"`
	RegistrationDate string  `json:"registration_date"`
	TotalProducts    int     `json:"total_products"`
	TotalSales       float64 `json:"total_sales"`
	CommissionRate   float64 `json:"commission_rate"`
}

// View converts the seller into its wire representation.
func (s *Seller) View() View {
	return View{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.Email,
		Status:           string(s.Status),
		RegistrationDate: s.RegisteredAt.Format("2006-01-02"),
		TotalProducts:    s.TotalProducts,
		TotalSales:       s.TotalSales,
		CommissionRate:   s.CommissionRate,
	}
}
