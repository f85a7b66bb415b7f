package booking

import (
	"errors"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
)

var (
	ErrProviderNotFound    = errors.New("服务商不存在")
	ErrServiceNotFound     = errors.New("服务不存在")
	ErrStaffMemberNotFound = errors.New("员工不存在")
	ErrBookingNotFound     = errors.New("预约不存在")

	ErrServiceInactive     = errors.New("该服务已停用")
	ErrStaffMemberInactive = errors.New("该员工已停用")
	ErrInvalidGranularity  = errors.New("时间粒度必须在 1 到 120 分钟之间")
	ErrInvalidStatus       = errors.New("预约状态无效")

	ErrSlotNotOffered          = errors.New("该时段不在可预约范围内")
	ErrBookingInPast           = errors.New("不能预约已经过去的时间")
	ErrInvalidStatusTransition = errors.New("预约当前状态不允许此操作")

	// ErrSlotUnavailable 时段已被其他预约占用，可能是在提交的同时被别人抢先预约
	ErrSlotUnavailable = errors.New("该时段已被预约，请选择其他时间")
	ErrEditConflict    = errors.New("预约已被修改，请刷新后重试")
)

var invalidInputErrors = []error{
	availability.ErrInvalidDate,
	availability.ErrInvalidTimeFormat,
	availability.ErrNonexistentLocalTime,
	ErrServiceInactive,
	ErrStaffMemberInactive,
	ErrInvalidGranularity,
	ErrInvalidStatus,
	ErrSlotNotOffered,
	ErrBookingInPast,
	ErrInvalidStatusTransition,
}

var notFoundErrors = []error{
	ErrProviderNotFound,
	ErrServiceNotFound,
	ErrStaffMemberNotFound,
	ErrBookingNotFound,
}

// IsInvalidInput 判断错误是否由调用方的输入引起
func IsInvalidInput(err error) bool {
	return matchAny(err, invalidInputErrors)
}

func IsNotFound(err error) bool {
	return matchAny(err, notFoundErrors)
}

// IsConflict 判断错误是否为提交时发生的冲突
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrEditConflict)
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
