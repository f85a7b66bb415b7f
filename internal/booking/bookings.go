package booking

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

type CreateBookingRequest struct {
	ProviderID    int64
	ServiceID     int64
	StaffMemberID *int64
	Date          string // 服务商当地日期
	Time          string // 服务商当地时间 HH:MM
	ClientName    string
	ClientPhone   string
	ClientEmail   string
	Notes         string
	Status        domain.BookingStatus // 为空时为 pending，服务商手动录入时可以直接设为 confirmed
}

// CreateBooking 先在锁外快速检查一次，再在锁内重新加载当天的预约并再次检查，最后写入
func (s *Service) CreateBooking(req CreateBookingRequest) (*BookingView, error) {
	status := req.Status
	if status == "" {
		status = domain.BookingStatusPending
	}
	if status != domain.BookingStatusPending && status != domain.BookingStatusConfirmed {
		return nil, ErrInvalidStatus
	}

	dc, err := s.loadDay(req.ProviderID, req.ServiceID, req.StaffMemberID, req.Date, false)
	if err != nil {
		return nil, err
	}

	startMinute, err := s.startOf(dc, req.Time)
	if err != nil {
		return nil, err
	}

	from, to := dc.bounds()
	bookings, err := s.store.GetBookingsByProviderBetween(req.ProviderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("获取预约失败: %w", err)
	}
	if _, err := dc.check(bookings, startMinute, 0); err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ProviderID:    req.ProviderID,
		ServiceID:     dc.service.ID,
		StaffMemberID: dc.staffMemberID(),
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		Notes:         req.Notes,
		Status:        status,
	}

	err = s.store.WithinBookingLock(req.ProviderID, req.Date, func(w BookingWriter) error {
		bookings, err := w.GetBookingsByProviderBetween(req.ProviderID, from, to)
		if err != nil {
			return fmt.Errorf("获取预约失败: %w", err)
		}

		slot, err := dc.check(bookings, startMinute, 0)
		if err != nil {
			return err
		}

		b.StartTime = slot.StartAt
		b.EndTime = slot.EndAt
		return w.CreateBooking(b)
	})
	if err != nil {
		return nil, err
	}

	s.notifyCreated(dc, b)

	return newBookingView(dc.norm, b), nil
}

type RescheduleRequest struct {
	ProviderID    int64
	BookingID     int64
	Date          string
	Time          string
	StaffMemberID *int64 // 为空时沿用原来的员工
}

// RescheduleBooking 修改待确认或已确认预约的时间，检查冲突时忽略预约自身
func (s *Service) RescheduleBooking(req RescheduleRequest) (*BookingView, error) {
	b, err := s.getOwnedBooking(req.ProviderID, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !b.Status.Blocks() {
		return nil, ErrInvalidStatusTransition
	}

	staffMemberID := req.StaffMemberID
	if staffMemberID == nil {
		staffMemberID = b.StaffMemberID
	}

	// 服务或员工在预约之后被停用，不影响已有预约改期
	dc, err := s.loadDay(req.ProviderID, b.ServiceID, staffMemberID, req.Date, true)
	if err != nil {
		return nil, err
	}

	startMinute, err := s.startOf(dc, req.Time)
	if err != nil {
		return nil, err
	}

	from, to := dc.bounds()
	bookings, err := s.store.GetBookingsByProviderBetween(req.ProviderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("获取预约失败: %w", err)
	}
	if _, err := dc.check(bookings, startMinute, b.ID); err != nil {
		return nil, err
	}

	err = s.store.WithinBookingLock(req.ProviderID, req.Date, func(w BookingWriter) error {
		bookings, err := w.GetBookingsByProviderBetween(req.ProviderID, from, to)
		if err != nil {
			return fmt.Errorf("获取预约失败: %w", err)
		}

		slot, err := dc.check(bookings, startMinute, b.ID)
		if err != nil {
			return err
		}

		b.StartTime = slot.StartAt
		b.EndTime = slot.EndAt
		b.StaffMemberID = dc.staffMemberID()
		if err := w.UpdateBooking(b); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEditConflict
			}
			return fmt.Errorf("更新预约失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChanged(dc.provider, dc.service, b, "预约时间已调整")

	return newBookingView(dc.norm, b), nil
}

// UpdateBookingStatus 修改预约状态，已取消和已完成的预约不能再修改
// 状态只会从占用变为不占用，所以不需要重新检查冲突
func (s *Service) UpdateBookingStatus(providerID, bookingID int64, status domain.BookingStatus, reason string) (*BookingView, error) {
	switch status {
	case domain.BookingStatusPending, domain.BookingStatusConfirmed, domain.BookingStatusCancelled, domain.BookingStatusCompleted:
	default:
		return nil, ErrInvalidStatus
	}

	b, err := s.getOwnedBooking(providerID, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(status) {
		return nil, ErrInvalidStatusTransition
	}

	provider, err := s.store.GetProviderByID(providerID)
	if err != nil {
		return nil, lookup(err, ErrProviderNotFound, "获取服务商失败")
	}

	b.Status = status
	if status == domain.BookingStatusCancelled {
		b.CancellationReason = reason
	}

	if err := s.store.UpdateBooking(b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEditConflict
		}
		return nil, fmt.Errorf("更新预约失败: %w", err)
	}

	service, err := s.store.GetServiceByID(b.ServiceID)
	if err == nil {
		s.notifyStatusChanged(provider, service, b, b.CancellationReason)
	}

	return newBookingView(s.Normalizer(provider), b), nil
}

// ListBookingsOnDate 返回服务商当地某一天的所有预约（包括已取消和已完成的）
// staffMemberID 不为空时只返回指定给该员工的预约
func (s *Service) ListBookingsOnDate(providerID int64, date string, staffMemberID *int64) ([]*BookingView, error) {
	provider, err := s.store.GetProviderByID(providerID)
	if err != nil {
		return nil, lookup(err, ErrProviderNotFound, "获取服务商失败")
	}

	norm := s.Normalizer(provider)
	day, err := norm.ParseDate(date)
	if err != nil {
		return nil, err
	}

	from, to := norm.DayBounds(day)
	bookings, err := s.store.GetBookingsByProviderBetween(providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("获取预约失败: %w", err)
	}

	views := make([]*BookingView, 0, len(bookings))
	for _, b := range bookings {
		if staffMemberID != nil && (b.StaffMemberID == nil || *b.StaffMemberID != *staffMemberID) {
			continue
		}
		views = append(views, newBookingView(norm, b))
	}

	return views, nil
}

// GetBooking 获取服务商名下的某个预约
func (s *Service) GetBooking(providerID, bookingID int64) (*BookingView, error) {
	b, err := s.getOwnedBooking(providerID, bookingID)
	if err != nil {
		return nil, err
	}

	provider, err := s.store.GetProviderByID(providerID)
	if err != nil {
		return nil, lookup(err, ErrProviderNotFound, "获取服务商失败")
	}

	return newBookingView(s.Normalizer(provider), b), nil
}

func (s *Service) getOwnedBooking(providerID, bookingID int64) (*domain.Booking, error) {
	b, err := s.store.GetBookingByID(bookingID)
	if err != nil {
		return nil, lookup(err, ErrBookingNotFound, "获取预约失败")
	}
	if b.ProviderID != providerID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}
