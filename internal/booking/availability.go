package booking

import (
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
)

type AvailabilityQuery struct {
	ProviderID    int64
	ServiceID     int64
	StaffMemberID *int64 // 为空时按服务商整体计算
	Date          string // 服务商当地日期 YYYY-MM-DD
	Granularity   int    // 为 0 时使用默认值
}

type Availability struct {
	Date            string `json:"date"`
	Timezone        string `json:"timezone"`
	ServiceID       int64  `json:"serviceID"`
	StaffMemberID   *int64 `json:"staffMemberID"`
	DurationMinutes int32  `json:"durationMinutes"`
	availability.Result
}

// ComputeAvailability 计算某一天的全部候选时段及其是否可预约
func (s *Service) ComputeAvailability(q AvailabilityQuery) (*Availability, error) {
	if q.Granularity != 0 && (q.Granularity < availability.MinGranularity || q.Granularity > availability.MaxGranularity) {
		return nil, ErrInvalidGranularity
	}

	dc, err := s.loadDay(q.ProviderID, q.ServiceID, q.StaffMemberID, q.Date, false)
	if err != nil {
		return nil, err
	}

	from, to := dc.bounds()
	bookings, err := s.store.GetBookingsByProviderBetween(q.ProviderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("获取预约失败: %w", err)
	}

	result := availability.Generate(dc.request(bookings, q.Granularity, 0))
	for _, warning := range result.Warnings {
		slog.Warn("工作时间配置有误", "providerID", q.ProviderID, "staffMemberID", dc.staffMemberID(), "date", q.Date, "warning", warning)
	}

	return &Availability{
		Date:            q.Date,
		Timezone:        dc.norm.Name(),
		ServiceID:       dc.service.ID,
		StaffMemberID:   dc.staffMemberID(),
		DurationMinutes: dc.service.DurationMinutes,
		Result:          result,
	}, nil
}
