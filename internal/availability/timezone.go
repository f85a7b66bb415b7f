package availability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	// MaxOffsetMinutes 固定偏移量支持的范围为 ±14 小时
	MaxOffsetMinutes = 14 * 60
)

var (
	ErrInvalidTimeFormat    = errors.New("时间格式错误，应为 HH:MM 且在 00:00 到 23:59 之间")
	ErrInvalidDate          = errors.New("日期无效，应为 YYYY-MM-DD 格式的合法日期")
	ErrNonexistentLocalTime = errors.New("该时间在当地时区中不存在（夏令时切换）")
	ErrInvalidTimezone      = errors.New("时区无效")
)

var (
	clockPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	offsetPattern = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{2}):(\d{2})$`)
)

// ParseClock 将 H:MM 或 HH:MM 解析为当日分钟数
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidTimeFormat
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, ErrInvalidTimeFormat
	}
	return hour*60 + minute, nil
}

// FormatClock 将当日分钟数格式化为 HH:MM，1440 会被格式化为 24:00
func FormatClock(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

// Normalizer 负责在当地墙上时间和数据库中存储的 UTC 时刻之间转换
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// LoadNormalizer 根据 IANA 时区名（如 America/Sao_Paulo）创建
func LoadNormalizer(name string) (*Normalizer, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, name)
	}
	return NewNormalizer(loc), nil
}

// FixedOffsetNormalizer 根据相对 UTC 的分钟偏移量创建，例如 -180 表示 UTC-03:00
func FixedOffsetNormalizer(offsetMinutes int) (*Normalizer, error) {
	if offsetMinutes < -MaxOffsetMinutes || offsetMinutes > MaxOffsetMinutes {
		return nil, fmt.Errorf("%w: 偏移量 %d 分钟超出范围", ErrInvalidTimezone, offsetMinutes)
	}
	sign := "+"
	abs := offsetMinutes
	if offsetMinutes < 0 {
		sign = "-"
		abs = -offsetMinutes
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, abs/60, abs%60)
	return NewNormalizer(time.FixedZone(name, offsetMinutes*60)), nil
}

// ParseTimezone 同时支持 IANA 时区名和 UTC-03:00、+05:30 这样的固定偏移量
func ParseTimezone(name string) (*Normalizer, error) {
	if m := offsetPattern.FindStringSubmatch(name); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		if minutes > 59 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, name)
		}
		offset := hours*60 + minutes
		if m[1] == "-" {
			offset = -offset
		}
		return FixedOffsetNormalizer(offset)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: 时区为空", ErrInvalidTimezone)
	}
	return LoadNormalizer(name)
}

// Name 返回时区名称
func (n *Normalizer) Name() string {
	return n.loc.String()
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseDate 解析 YYYY-MM-DD，返回当地时区中的那一天
func (n *Normalizer) ParseDate(s string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, s, n.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, n.loc), nil
}

// At 返回 day 当天第 minuteOfDay 分钟对应的时刻，minuteOfDay 为 1440 时即第二天零点
func (n *Normalizer) At(day time.Time, minuteOfDay int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minuteOfDay, 0, 0, n.loc)
}

// Exists 判断 day 当天的墙上时间 minuteOfDay 是否存在
// 夏令时跳过的时间会被 time.Date 规范化到另一个时刻
func (n *Normalizer) Exists(day time.Time, minuteOfDay int) bool {
	local := n.At(day, minuteOfDay)
	return local.Day() == day.Day() && local.Hour()*60+local.Minute() == minuteOfDay
}

// DayBounds 返回 day 当天的起止时刻 [start, end)
func (n *Normalizer) DayBounds(day time.Time) (time.Time, time.Time) {
	return n.At(day, 0), n.At(day, MinutesPerDay)
}

// ToCanonical 将当地日期和 HH:MM 转换为 UTC 时刻
func (n *Normalizer) ToCanonical(localDate, localHHMM string) (time.Time, error) {
	day, err := n.ParseDate(localDate)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := ParseClock(localHHMM)
	if err != nil {
		return time.Time{}, err
	}

	// 这种输入无法还原，直接拒绝
	if !n.Exists(day, minute) {
		return time.Time{}, ErrNonexistentLocalTime
	}

	return n.At(day, minute).UTC(), nil
}

// ToLocal 将时刻转换为当地的日期和 HH:MM
func (n *Normalizer) ToLocal(instant time.Time) (string, string) {
	local := instant.In(n.loc)
	return local.Format(DateLayout), local.Format(ClockLayout)
}

// MinuteOfDay 返回 instant 在当地时间中的当日分钟数
func (n *Normalizer) MinuteOfDay(instant time.Time) int {
	local := instant.In(n.loc)
	return local.Hour()*60 + local.Minute()
}
