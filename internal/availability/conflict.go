package availability

import (
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

type activeBooking struct {
	staffMemberID *int64
	start         int64
	end           int64
}

// ConflictChecker 判断候选时段是否被当天已有的预约占用
type ConflictChecker struct {
	active []activeBooking
}

// NewConflictChecker 只保留待确认和已确认的预约，已取消和已完成的预约不参与冲突判断
func NewConflictChecker(bookings []domain.Booking) *ConflictChecker {
	c := &ConflictChecker{
		active: make([]activeBooking, 0, len(bookings)),
	}
	for _, b := range bookings {
		if !b.Status.Blocks() {
			continue
		}
		c.active = append(c.active, activeBooking{
			staffMemberID: b.StaffMemberID,
			start:         b.StartTime.UnixNano(),
			end:           b.EndTime.UnixNano(),
		})
	}
	return c
}

// Occupied 判断 [start, end) 是否被占用
// staffMemberID 不为空时，只有同一员工的预约以及未指定员工的预约会造成冲突；
// 为空时服务商下所有有效预约都会造成冲突
func (c *ConflictChecker) Occupied(start, end time.Time, staffMemberID *int64) bool {
	s, e := start.UnixNano(), end.UnixNano()
	for _, b := range c.active {
		if staffMemberID != nil && b.staffMemberID != nil && *b.staffMemberID != *staffMemberID {
			continue
		}
		if Overlaps(s, e, b.start, b.end) {
			return true
		}
	}
	return false
}
