package jobs

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const BookingExpiryJobName = "expire-pending-bookings"

// Expirer 由 booking.Service 实现
type Expirer interface {
	ExpireStalePendingBookings(grace time.Duration) (int, error)
}

// RegisterBookingExpiry 定期取消开始时间已过去 grace 仍未确认的预约
func RegisterBookingExpiry(s *Scheduler, expirer Expirer, cronExpr string, grace time.Duration) (gocron.Job, error) {
	return s.AddJob(BookingExpiryJobName, cronExpr, expiryTask(expirer, grace))
}

func expiryTask(expirer Expirer, grace time.Duration) func() {
	return func() {
		n, err := expirer.ExpireStalePendingBookings(grace)
		if err != nil {
			slog.Error("自动取消过期预约失败", "error", err, "cancelled", n)
			return
		}
		if n > 0 {
			slog.Info("已自动取消过期预约", "cancelled", n)
		}
	}
}
