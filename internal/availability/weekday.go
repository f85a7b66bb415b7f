package availability

import "time"

// ISOWeekday 将日期映射为 1（周一）到 7（周日）
func ISOWeekday(date time.Time) int32 {
	wd := date.Weekday()
	if wd == time.Sunday {
		return 7
	}
	return int32(wd)
}
