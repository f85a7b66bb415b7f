package availability

import (
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// WorkingWindow 某个资源在某一天生效的工作时间
type WorkingWindow struct {
	IsWorkingDay bool
	Work         Interval
	Break        *Interval
	Fallback     bool   // 工作时间配置有误时退化为全天
	Warning      string // 配置有误时的提示信息
}

// ResolveWorkingWindow 计算 date 当天生效的工作时间
// staff 不为空时完全替代服务商的配置
func ResolveWorkingWindow(provider domain.WorkSchedule, staff *domain.WorkSchedule, date time.Time) WorkingWindow {
	schedule := provider
	if staff != nil {
		schedule = *staff
	}

	if !slices.Contains(schedule.WorkingDays, ISOWeekday(date)) {
		return WorkingWindow{IsWorkingDay: false}
	}

	window := WorkingWindow{
		IsWorkingDay: true,
		Work:         Interval{Start: int(schedule.WorkStart), End: int(schedule.WorkEnd)},
	}

	// 结束时间不晚于开始时间属于配置错误，不能因此阻塞预约，退化为全天
	if !window.Work.Valid() {
		window.Warning = fmt.Sprintf("工作时间配置有误（%s-%s），已按全天处理", FormatClock(window.Work.Start), FormatClock(window.Work.End))
		window.Work = Interval{Start: 0, End: MinutesPerDay}
		window.Fallback = true
	}

	if schedule.BreakStart != nil && schedule.BreakEnd != nil {
		brk := Interval{Start: int(*schedule.BreakStart), End: int(*schedule.BreakEnd)}
		if brk.Valid() {
			window.Break = &brk
		}
	}

	return window
}
