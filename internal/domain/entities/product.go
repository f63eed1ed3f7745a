package entities

import "time"

// LowStockThreshold is the quantity below which a product is flagged low
const LowStockThreshold = 10

// Product is a catalog item. Deleting a product clears IsActive.
type Product struct {
	ID               string    `json:"id" db:"id"`
	Slug             string    `json:"slug" db:"slug"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	Price            string    `json:"price" db:"price"` // NUMERIC(10,2) kept as text to avoid float rounding
	Category         string    `json:"category" db:"category"`
	Sizes            []string  `json:"sizes" db:"sizes"`
	Colors           []string  `json:"colors" db:"colors"`
	Images           []string  `json:"images" db:"images"`
	StockQuantity    int       `json:"stockQuantity" db:"stock_quantity"`
	Brand            string    `json:"brand,omitempty" db:"brand"`
	Material         string    `json:"material,omitempty" db:"material"`
	CareInstructions string    `json:"careInstructions,omitempty" db:"care_instructions"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// LowStock reports whether the stock level is under LowStockThreshold
func (p *Product) LowStock() bool {
	return p.StockQuantity < LowStockThreshold
}
