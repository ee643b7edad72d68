package models

import "time"

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "PENDING"
	RedemptionApproved RedemptionStatus = "APPROVED"
	RedemptionRejected RedemptionStatus = "REJECTED"
)

// CanTransition reports whether a redemption may move to the given
// status. APPROVED and REJECTED are terminal.
func (s RedemptionStatus) CanTransition(to RedemptionStatus) bool {
	return s == RedemptionPending && (to == RedemptionApproved || to == RedemptionRejected)
}

func (s RedemptionStatus) Terminal() bool {
	return s == RedemptionApproved || s == RedemptionRejected
}

type LoyaltyProduct struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PointsCost  int       `json:"points_cost"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	ProductID   *int64    `json:"product_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LoyaltyRedemption struct {
	ID              int64                   `json:"id"`
	OpticianID      int64                   `json:"optician_id"`
	TotalPoints     int                     `json:"total_points"`
	Status          RedemptionStatus        `json:"status"`
	ApprovedAt      *time.Time              `json:"approved_at,omitempty"`
	ApprovedBy      *int64                  `json:"approved_by,omitempty"`
	RejectedAt      *time.Time              `json:"rejected_at,omitempty"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	Items           []LoyaltyRedemptionItem `json:"items"`
}

// LoyaltyRedemptionItem snapshots the loyalty product at request time so
// later catalog edits never alter redemption history.
type LoyaltyRedemptionItem struct {
	ID               int64  `json:"id"`
	RedemptionID     int64  `json:"redemption_id"`
	LoyaltyProductID int64  `json:"loyalty_product_id"`
	ProductName      string `json:"product_name"`
	ImageURL         string `json:"image_url"`
	Quantity         int    `json:"quantity"`
	PointsCost       int    `json:"points_cost"`
	TotalPoints      int    `json:"total_points"`
}

type RedemptionLine struct {
	LoyaltyProductID int64 `json:"loyalty_product_id" binding:"required"`
	Quantity         int   `json:"quantity" binding:"required,gt=0"`
}

type CreateRedemptionRequest struct {
	Items []RedemptionLine `json:"items" binding:"required"`
}

type RejectRedemptionRequest struct {
	Reason string `json:"reason"`
}

type CreateLoyaltyProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost" binding:"required,gt=0"`
	ImageURL    string `json:"image_url"`
	ProductID   *int64 `json:"product_id"`
}
