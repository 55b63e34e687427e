package products

import "time"

// Status is the closed set of product states.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusOutOfStock Status = "out_of_stock"
)

// Product is a catalog entry as seen by the admin panel.
type Product struct {
	ID         int64
	Name       string
	Category   string
	SellerName string
	Price      float64
	Stock      int
	Status     Status
	CreatedAt  time.Time
}

// View is the wire representation of a product row.
type View struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	SellerName  string  `json:"seller_name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Status      string  `json:"status"`
	CreatedDate string  `json:"created_date"`
}

// View converts the product into its wire representation.
func (p *Product) View() View {
	return View{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		SellerName:  p.SellerName,
		Price:       p.Price,
		Stock:       p.Stock,
		Status:      string(p.Status),
		CreatedDate: p.CreatedAt.Format("2006-01-02"),
	}
}
