package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Blocks 表示处于该状态的预约是否会占用时段
func (s BookingStatus) Blocks() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// CanTransitionTo 已取消和已完成的预约不能再改变状态
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled || next == BookingStatusCompleted
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled || next == BookingStatusCompleted
	default:
		return false
	}
}

type Booking struct {
	ID                 int64         `json:"id"`
	ProviderID         int64         `json:"providerID"`
	ServiceID          int64         `json:"serviceID"`
	StaffMemberID      *int64        `json:"staffMemberID"` // 为空表示未指定员工，会占用服务商下所有员工
	ClientName         string        `json:"clientName"`
	ClientPhone        string        `json:"clientPhone"`
	ClientEmail        string        `json:"clientEmail"`
	Notes              string        `json:"notes"`
	StartTime          time.Time     `json:"startTime"`
	EndTime            time.Time     `json:"endTime"`
	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellationReason"`
	CreatedAt          time.Time     `json:"createdAt"`
	Version            int32         `json:"-"`
}
