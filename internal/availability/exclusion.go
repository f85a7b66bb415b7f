package availability

import (
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// ResolveExclusions 返回 date 当天生效的屏蔽时段，按开始时间排序
// 包括所有未指定星期的启用规则，以及星期和 date 相同的启用规则
func ResolveExclusions(exclusions []domain.TimeExclusion, date time.Time) []Interval {
	weekday := ISOWeekday(date)

	blackouts := make([]Interval, 0, len(exclusions))
	for _, ex := range exclusions {
		if !ex.IsActive {
			continue
		}
		if ex.Weekday != nil && *ex.Weekday != weekday {
			continue
		}
		iv := Interval{Start: int(ex.StartTime), End: int(ex.EndTime)}
		if !iv.Valid() {
			continue
		}
		blackouts = append(blackouts, iv)
	}

	sort.Slice(blackouts, func(i, j int) bool {
		if blackouts[i].Start != blackouts[j].Start {
			return blackouts[i].Start < blackouts[j].Start
		}
		return blackouts[i].End < blackouts[j].End
	})

	return blackouts
}
