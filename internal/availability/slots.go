package availability

import (
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// Reason 时段不可预约的原因
type Reason string

const (
	ReasonBreak    Reason = "break"
	ReasonExcluded Reason = "excluded"
	ReasonBooked   Reason = "booked"
	// ReasonClosed 只会由 Evaluate 返回，Generate 生成的时段一定在工作时间内
	ReasonClosed Reason = "closed"
	// ReasonNonexistent 开始时间落在夏令时跳过的那段墙上时间里
	ReasonNonexistent Reason = "nonexistent"
)

const (
	DefaultGranularity = 30
	MinGranularity     = 1
	MaxGranularity     = 120
)

type Slot struct {
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	Available bool      `json:"available"`
	Reason    Reason    `json:"reason,omitempty"`

	start int
	end   int
}

// Request 计算某一天可预约时段所需的全部输入，调用方负责从数据库加载
type Request struct {
	Provider        domain.WorkSchedule
	Staff           *domain.WorkSchedule // 不为空时替代服务商的工作时间
	StaffMemberID   *int64               // 为空表示不指定员工
	Date            time.Time            // 由 Normalizer.ParseDate 得到的当地日期
	DurationMinutes int
	Granularity     int // 为 0 时使用 DefaultGranularity
	Exclusions      []domain.TimeExclusion
	Bookings        []domain.Booking
	Normalizer      *Normalizer
}

type Result struct {
	IsWorkingDay bool     `json:"isWorkingDay"`
	Slots        []Slot   `json:"slots"`
	Warnings     []string `json:"warnings"`
}

func ClampGranularity(g int) int {
	switch {
	case g == 0:
		return DefaultGranularity
	case g < MinGranularity:
		return MinGranularity
	case g > MaxGranularity:
		return MaxGranularity
	default:
		return g
	}
}

type dayPlan struct {
	window    WorkingWindow
	blackouts []Interval
	checker   *ConflictChecker
	norm      *Normalizer
	day       time.Time
	duration  int
	staffID   *int64
}

func newDayPlan(req Request) dayPlan {
	norm := req.Normalizer
	if norm == nil {
		norm = NewNormalizer(time.UTC)
	}
	day := req.Date.In(norm.Location())

	return dayPlan{
		window:    ResolveWorkingWindow(req.Provider, req.Staff, day),
		blackouts: ResolveExclusions(req.Exclusions, day),
		checker:   NewConflictChecker(req.Bookings),
		norm:      norm,
		day:       day,
		duration:  req.DurationMinutes,
		staffID:   req.StaffMemberID,
	}
}

// evaluate 按顺序检查休息时间、屏蔽时段、已有预约，命中第一条规则即返回
// 规则按墙上时间判断，StartAt/EndAt 则按时刻计算，EndAt 总是 StartAt 加上服务时长
func (p dayPlan) evaluate(start int) Slot {
	candidate := Interval{Start: start, End: start + p.duration}
	startAt := p.norm.At(p.day, candidate.Start).UTC()
	slot := Slot{
		StartTime: FormatClock(candidate.Start),
		EndTime:   FormatClock(candidate.End),
		StartAt:   startAt,
		EndAt:     startAt.Add(time.Duration(p.duration) * time.Minute),
		start:     candidate.Start,
		end:       candidate.End,
	}

	switch {
	case !p.norm.Exists(p.day, candidate.Start):
		slot.Reason = ReasonNonexistent
	case p.window.Break != nil && candidate.Overlaps(*p.window.Break):
		slot.Reason = ReasonBreak
	case candidate.OverlapsAny(p.blackouts):
		slot.Reason = ReasonExcluded
	case p.checker.Occupied(slot.StartAt, slot.EndAt, p.staffID):
		slot.Reason = ReasonBooked
	default:
		slot.Available = true
	}

	return slot
}

// Generate 生成某一天的全部候选时段
// 非工作日返回空列表且 IsWorkingDay 为 false，这和“全部不可约”的非空列表是两种不同的结果
func Generate(req Request) Result {
	plan := newDayPlan(req)

	result := Result{
		IsWorkingDay: plan.window.IsWorkingDay,
		Slots:        []Slot{},
		Warnings:     []string{},
	}
	if !plan.window.IsWorkingDay {
		return result
	}
	if plan.window.Warning != "" {
		result.Warnings = append(result.Warnings, plan.window.Warning)
	}
	if plan.duration <= 0 {
		return result
	}

	step := ClampGranularity(req.Granularity)
	for start := plan.window.Work.Start; start+plan.duration <= plan.window.Work.End; start += step {
		result.Slots = append(result.Slots, plan.evaluate(start))
	}

	return result
}

// Evaluate 检查从 startMinute 开始的单个时段，用于提交预约时的校验
// 和 Generate 使用同样的规则，但不要求开始时间落在网格上：
// 任何分钟都在粒度为 1 的网格上，因此 Evaluate 可约当且仅当 Generate 在粒度 1 下给出同一时段为可约
func Evaluate(req Request, startMinute int) Slot {
	plan := newDayPlan(req)

	if !plan.window.IsWorkingDay || plan.duration <= 0 {
		slot := plan.evaluate(startMinute)
		slot.Available = false
		slot.Reason = ReasonClosed
		return slot
	}

	slot := plan.evaluate(startMinute)
	if !plan.window.Work.Contains(Interval{Start: slot.start, End: slot.end}) {
		slot.Available = false
		slot.Reason = ReasonClosed
	}
	return slot
}
