package domain

import "time"

type TimeExclusion struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerID"`
	Name       string    `json:"name"`
	StartTime  int32     `json:"startTime"` // 当日分钟数
	EndTime    int32     `json:"endTime"`
	Weekday    *int32    `json:"weekday"` // 为空表示每天都生效
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
