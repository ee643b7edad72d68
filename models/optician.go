package models

import "time"

type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountApproved AccountStatus = "APPROVED"
	AccountRejected AccountStatus = "REJECTED"
)

// CanTransition reports whether an account review transition is allowed.
// PENDING is the only non-terminal state.
func (s AccountStatus) CanTransition(to AccountStatus) bool {
	return s == AccountPending && (to == AccountApproved || to == AccountRejected)
}

type Optician struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Company       string        `json:"company"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	Country       string        `json:"country"`
	PlusCode      string        `json:"plus_code,omitempty"`
	Latitude      *float64      `json:"latitude,omitempty"`
	Longitude     *float64      `json:"longitude,omitempty"`
	Status        AccountStatus `json:"status"`
	LoyaltyPoints int           `json:"loyalty_points"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type RegisterOpticianRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	PlusCode string `json:"plus_code"`
}

type NearbyOptician struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Company    string  `json:"company"`
	City       string  `json:"city"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKM float64 `json:"distance_km"`
}
