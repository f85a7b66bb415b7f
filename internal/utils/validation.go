package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// WorkScheduleInput 接口中以 HH:MM 表示的工作时间
type WorkScheduleInput struct {
	WorkingDays []int32 `json:"workingDays" validate:"required,min=1,max=7,unique,dive,min=1,max=7"`
	WorkStart   string  `json:"workStart" validate:"required"`
	WorkEnd     string  `json:"workEnd" validate:"required"`
	BreakStart  *string `json:"breakStart"`
	BreakEnd    *string `json:"breakEnd"`
}

// ToDomain 解析时间并校验工作时间是否合理
func (in *WorkScheduleInput) ToDomain() (domain.WorkSchedule, error) {
	ws := domain.WorkSchedule{
		WorkingDays: append([]int32{}, in.WorkingDays...),
	}

	start, err := availability.ParseClock(in.WorkStart)
	if err != nil {
		return ws, fmt.Errorf("上班时间%w", err)
	}
	end, err := availability.ParseClock(in.WorkEnd)
	if err != nil {
		return ws, fmt.Errorf("下班时间%w", err)
	}
	ws.WorkStart, ws.WorkEnd = int32(start), int32(end)

	if (in.BreakStart == nil) != (in.BreakEnd == nil) {
		return ws, errors.New("午休开始时间和结束时间必须同时填写")
	}
	if in.BreakStart != nil && *in.BreakStart != "" {
		breakStart, err := availability.ParseClock(*in.BreakStart)
		if err != nil {
			return ws, fmt.Errorf("午休开始时间%w", err)
		}
		breakEnd, err := availability.ParseClock(*in.BreakEnd)
		if err != nil {
			return ws, fmt.Errorf("午休结束时间%w", err)
		}
		bs, be := int32(breakStart), int32(breakEnd)
		ws.BreakStart, ws.BreakEnd = &bs, &be
	}

	if err := ValidateWorkSchedule(&ws); err != nil {
		return ws, err
	}

	return ws, nil
}

// FromWorkSchedule 将工作时间转换为接口中的表示
func FromWorkSchedule(ws domain.WorkSchedule) WorkScheduleInput {
	in := WorkScheduleInput{
		WorkingDays: ws.WorkingDays,
		WorkStart:   availability.FormatClock(int(ws.WorkStart)),
		WorkEnd:     availability.FormatClock(int(ws.WorkEnd)),
	}
	if ws.BreakStart != nil && ws.BreakEnd != nil {
		bs := availability.FormatClock(int(*ws.BreakStart))
		be := availability.FormatClock(int(*ws.BreakEnd))
		in.BreakStart, in.BreakEnd = &bs, &be
	}
	return in
}

// ValidateWorkSchedule 新保存的工作时间必须合法
// 数据库中已有的不合法配置由引擎退化为全天处理，不会在这里被拒绝之后就无法预约
func ValidateWorkSchedule(ws *domain.WorkSchedule) error {
	if len(ws.WorkingDays) == 0 {
		return errors.New("至少需要一个工作日")
	}
	seen := make(map[int32]bool)
	for _, day := range ws.WorkingDays {
		if day < 1 || day > 7 {
			return fmt.Errorf("工作日 %d 不合法，应为 1（周一）到 7（周日）", day)
		}
		if seen[day] {
			return fmt.Errorf("工作日 %d 重复", day)
		}
		seen[day] = true
	}

	work := availability.Interval{Start: int(ws.WorkStart), End: int(ws.WorkEnd)}
	if !work.Valid() {
		return errors.New("下班时间必须晚于上班时间")
	}

	if ws.BreakStart == nil && ws.BreakEnd == nil {
		return nil
	}
	if ws.BreakStart == nil || ws.BreakEnd == nil {
		return errors.New("午休开始时间和结束时间必须同时填写")
	}

	brk := availability.Interval{Start: int(*ws.BreakStart), End: int(*ws.BreakEnd)}
	if !brk.Valid() {
		return errors.New("午休结束时间必须晚于午休开始时间")
	}
	if !work.Contains(brk) {
		return errors.New("午休时间必须在工作时间之内")
	}

	return nil
}

// TimeExclusionInput 接口中以 HH:MM 表示的屏蔽时段
type TimeExclusionInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Weekday   *int32 `json:"weekday" validate:"omitempty,min=1,max=7"`
	IsActive  *bool  `json:"isActive"`
}

// Apply 将输入写入 ex，IsActive 为空时保持原值
func (in *TimeExclusionInput) Apply(ex *domain.TimeExclusion) error {
	start, err := availability.ParseClock(in.StartTime)
	if err != nil {
		return fmt.Errorf("开始时间%w", err)
	}
	end, err := availability.ParseClock(in.EndTime)
	if err != nil {
		return fmt.Errorf("结束时间%w", err)
	}

	ex.Name = in.Name
	ex.StartTime = int32(start)
	ex.EndTime = int32(end)
	ex.Weekday = in.Weekday
	if in.IsActive != nil {
		ex.IsActive = *in.IsActive
	}

	return ValidateTimeExclusion(ex)
}

func ValidateTimeExclusion(ex *domain.TimeExclusion) error {
	iv := availability.Interval{Start: int(ex.StartTime), End: int(ex.EndTime)}
	if !iv.Valid() {
		return errors.New("屏蔽时段的结束时间必须晚于开始时间")
	}
	if ex.Weekday != nil && (*ex.Weekday < 1 || *ex.Weekday > 7) {
		return fmt.Errorf("星期 %d 不合法，应为 1（周一）到 7（周日）", *ex.Weekday)
	}
	return nil
}

// FindOverlappingExclusion 返回和 ex 在同一天生效且时间重叠的另一个启用中的屏蔽时段
func FindOverlappingExclusion(existing []*domain.TimeExclusion, ex *domain.TimeExclusion) *domain.TimeExclusion {
	if !ex.IsActive {
		return nil
	}
	for _, other := range existing {
		if other.ID == ex.ID || !other.IsActive {
			continue
		}
		sameDay := ex.Weekday == nil || other.Weekday == nil || *ex.Weekday == *other.Weekday
		if sameDay && availability.Overlaps(ex.StartTime, ex.EndTime, other.StartTime, other.EndTime) {
			return other
		}
	}
	return nil
}
