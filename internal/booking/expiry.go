package booking

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// ExpireStalePendingBookings 将开始时间早于 now - grace 且仍未确认的预约自动取消
// 每条预约单独更新，某一条失败不影响其他预约，返回成功取消的数量
func (s *Service) ExpireStalePendingBookings(grace time.Duration) (int, error) {
	cutoff := s.now().Add(-grace)

	bookings, err := s.store.GetPendingBookingsStartedBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("获取过期预约失败: %w", err)
	}

	providers := make(map[int64]*domain.Provider)
	services := make(map[int64]*domain.Service)

	expired := 0
	for _, b := range bookings {
		if !b.Status.CanTransitionTo(domain.BookingStatusCancelled) {
			continue
		}

		b.Status = domain.BookingStatusCancelled
		b.CancellationReason = ExpiredReason
		if err := s.store.UpdateBooking(b); err != nil {
			slog.Error("自动取消过期预约失败", "bookingID", b.ID, "error", err)
			continue
		}
		expired++

		provider, ok := providers[b.ProviderID]
		if !ok {
			provider, err = s.store.GetProviderByID(b.ProviderID)
			if err != nil {
				slog.Error("无法获取服务商信息", "providerID", b.ProviderID, "error", err)
				continue
			}
			providers[b.ProviderID] = provider
		}
		service, ok := services[b.ServiceID]
		if !ok {
			service, err = s.store.GetServiceByID(b.ServiceID)
			if err != nil {
				slog.Error("无法获取服务信息", "serviceID", b.ServiceID, "error", err)
				continue
			}
			services[b.ServiceID] = service
		}

		s.notifyStatusChanged(provider, service, b, ExpiredReason)
	}

	return expired, nil
}
