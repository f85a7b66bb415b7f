package domain

import "time"

type StaffMember struct {
	ID         int64         `json:"id"`
	ProviderID int64         `json:"providerID"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	IsActive   bool          `json:"isActive"`
	Schedule   *WorkSchedule `json:"schedule"` // 为空时沿用服务商的工作时间
	CreatedAt  time.Time     `json:"createdAt"`
	Version    int32         `json:"-"`
}
