package availability

import "cmp"

// MinutesPerDay 一天的分钟数，24:00 用 1440 表示
const MinutesPerDay = 24 * 60

// Overlaps 判断两个半开区间 [startA, endA) 和 [startB, endB) 是否重叠
// 首尾相接（endA == startB）不算重叠，所以前后紧挨着的两个预约是允许的
// 整个项目中所有的重叠判断都必须调用这个函数
func Overlaps[T cmp.Ordered](startA, endA, startB, endB T) bool {
	return startA < endB && endA > startB
}

// Interval 当日分钟数表示的半开区间 [Start, End)
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv.Start, iv.End, other.Start, other.End)
}

func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Contains 判断 other 是否完全落在 iv 内
func (iv Interval) Contains(other Interval) bool {
	return other.Start >= iv.Start && other.End <= iv.End
}

// OverlapsAny 返回 iv 是否和 blackouts 中任意一个区间重叠
func (iv Interval) OverlapsAny(blackouts []Interval) bool {
	for _, b := range blackouts {
		if iv.Overlaps(b) {
			return true
		}
	}
	return false
}
