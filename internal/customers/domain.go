package customers

import "time"

// Status is the closed set of shop customer states.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ParseStatus maps a wire value onto the closed enumeration, empty on miss.
func ParseStatus(s string) Status {
	switch s {
	case string(StatusActive):
		return StatusActive
	case string(StatusInactive):
		return StatusInactive
	case string(StatusSuspended):
		return StatusSuspended
	default:
		return Status("")
	}
}

// Customer is a storefront user as seen by the admin panel.
type Customer struct {
	ID           int64
	Name         string
	Email        string
	Status       Status
	RegisteredAt time.Time
	TotalOrders  int
	TotalSpent   float64
}

// View is the wire representation of a customer row.
type View struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Status           string  `json:"status"`
	RegistrationDate string  `json:"registration_date"`
	TotalOrders      int     `json:"total_orders"`
	TotalSpent       float64 `json:"total_spent"`
}

// View converts the customer into its wire representation.
func (c *Customer) View() View {
	return View{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Status:           string(c.Status),
		RegistrationDate: c.RegisteredAt.Format("2006-01-02"),
		TotalOrders:      c.TotalOrders,
		TotalSpent:       c.TotalSpent,
	}
}
