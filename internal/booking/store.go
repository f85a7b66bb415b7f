package booking

import (
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// BookingWriter 在预约锁内可以使用的操作
type BookingWriter interface {
	// GetBookingsByProviderBetween 返回服务商下与 [from, to) 有重叠的所有预约
	GetBookingsByProviderBetween(providerID int64, from, to time.Time) ([]*domain.Booking, error)
	CreateBooking(b *domain.Booking) error
	UpdateBooking(b *domain.Booking) error
}

// Store 是预约服务依赖的持久化接口，由 repository.Repository 实现
// 找不到记录时返回 sql.ErrNoRows，乐观锁版本不一致时 UpdateBooking 也返回 sql.ErrNoRows
type Store interface {
	BookingWriter

	GetProviderByID(id int64) (*domain.Provider, error)
	GetStaffMemberByID(id int64) (*domain.StaffMember, error)
	GetServiceByID(id int64) (*domain.Service, error)
	GetBookingByID(id int64) (*domain.Booking, error)
	GetActiveTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error)
	GetPendingBookingsStartedBefore(before time.Time) ([]*domain.Booking, error)

	// WithinBookingLock 在事务中持有 (providerID, date) 的锁并执行 fn，fn 返回错误时回滚
	WithinBookingLock(providerID int64, date string, fn func(w BookingWriter) error) error
}

// Notifier 负责把邮件放入队列
type Notifier interface {
	Publish(msg domain.MailMessage) error
}
