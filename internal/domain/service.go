package domain

import "time"

type Service struct {
	ID              int64     `json:"id"`
	ProviderID      int64     `json:"providerID"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int32     `json:"durationMinutes"`
	Price           int64     `json:"price"` // 以分为单位
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}
