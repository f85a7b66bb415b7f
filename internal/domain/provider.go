package domain

import "time"

// WorkSchedule 描述某个资源（服务商或员工）的工作时间配置，时间均为当地时间的“当日分钟数”
type WorkSchedule struct {
	WorkingDays []int32 `json:"workingDays"` // 1 表示周一，7 表示周日
	WorkStart   int32   `json:"workStart"`
	WorkEnd     int32   `json:"workEnd"`
	BreakStart  *int32  `json:"breakStart"` // 午休可以为空
	BreakEnd    *int32  `json:"breakEnd"`
}

type Provider struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Timezone     string       `json:"timezone"`
	Schedule     WorkSchedule `json:"schedule"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}
