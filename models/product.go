package models

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SalePrice   float64   `json:"sale_price"`
	SaleActive  bool      `json:"sale_active"`
	StockQty    int       `json:"stock_qty"`
	InStock     bool      `json:"in_stock"`
	ImageURL    string    `json:"image_url"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnitPrice returns the price an order line should snapshot: the sale
// price when a sale is running, the list price otherwise.
func (p *Product) UnitPrice() float64 {
	if p.SaleActive && p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	SalePrice   float64 `json:"sale_price"`
	SaleActive  bool    `json:"sale_active"`
	StockQty    int     `json:"stock_qty" binding:"gte=0"`
	ImageURL    string  `json:"image_url"`
}

type UpdateStockRequest struct {
	StockQty int `json:"stock_qty" binding:"gte=0"`
}
