package models

import "time"

type OrderItemStatus string

const (
	OrderItemPending   OrderItemStatus = "PENDING"
	OrderItemConfirmed OrderItemStatus = "CONFIRMED"
	OrderItemCancelled OrderItemStatus = "CANCELLED"
)

// CanTransition reports whether an order item may move to the given
// status. Items transition independently of their parent order and
// CONFIRMED/CANCELLED are terminal.
func (s OrderItemStatus) CanTransition(to OrderItemStatus) bool {
	return s == OrderItemPending && (to == OrderItemConfirmed || to == OrderItemCancelled)
}

type OrderSource string

const (
	SourceManual   OrderSource = "MANUAL"
	SourceOptician OrderSource = "OPTICIAN"
)

type Order struct {
	ID          int64       `json:"id"`
	OpticianID  int64       `json:"optician_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	Source      OrderSource `json:"source"`
	CreatedBy   *int64      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items"`
}

// OrderItem snapshots product naming and pricing at order time; the live
// product row is only consulted again for the stock check at confirmation.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Reference   string          `json:"reference"`
	UnitPrice   float64         `json:"unit_price"`
	SalePrice   float64         `json:"sale_price"`
	Discount    float64         `json:"discount"`
	Quantity    int             `json:"quantity"`
	LineTotal   float64         `json:"line_total"`
	Status      OrderItemStatus `json:"status"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty"`
	ConfirmedBy *int64          `json:"confirmed_by,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy *int64          `json:"cancelled_by,omitempty"`
}

type OrderLine struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items []OrderLine `json:"items" binding:"required"`
}

type CreateManualOrderRequest struct {
	OpticianID int64       `json:"optician_id" binding:"required"`
	Items      []OrderLine `json:"items" binding:"required"`
}
