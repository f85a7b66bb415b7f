package booking

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// ExpiredReason 系统自动取消过期预约时写入的取消原因
const ExpiredReason = "预约已过期，系统自动取消"

type Service struct {
	store           Store
	notifier        Notifier
	defaultTimezone string
	now             func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithDefaultTimezone 服务商没有配置时区或者配置有误时使用
func WithDefaultTimezone(tz string) Option {
	return func(s *Service) {
		s.defaultTimezone = tz
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		defaultTimezone: "UTC",
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookingView 在预约信息的基础上附带服务商当地的日期和时间
type BookingView struct {
	*domain.Booking
	LocalDate      string `json:"localDate"`
	LocalStartTime string `json:"localStartTime"`
	LocalEndTime   string `json:"localEndTime"`
}

func newBookingView(norm *availability.Normalizer, b *domain.Booking) *BookingView {
	date, start := norm.ToLocal(b.StartTime)
	_, end := norm.ToLocal(b.EndTime)
	return &BookingView{
		Booking:        b,
		LocalDate:      date,
		LocalStartTime: start,
		LocalEndTime:   end,
	}
}

// Normalizer 返回服务商所在时区的转换器，时区配置有误时退化为默认时区
func (s *Service) Normalizer(p *domain.Provider) *availability.Normalizer {
	norm, err := availability.ParseTimezone(p.Timezone)
	if err == nil {
		return norm
	}

	slog.Warn("服务商时区配置有误，使用默认时区", "providerID", p.ID, "timezone", p.Timezone, "default", s.defaultTimezone)

	norm, err = availability.ParseTimezone(s.defaultTimezone)
	if err != nil {
		return availability.NewNormalizer(time.UTC)
	}
	return norm
}

// lookup 将 sql.ErrNoRows 转换为对应的业务错误
func lookup(err error, notFound error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s: %w", action, err)
}

// dayContext 计算某一天可预约时段需要的全部数据
type dayContext struct {
	provider   *domain.Provider
	service    *domain.Service
	staff      *domain.StaffMember
	norm       *availability.Normalizer
	date       string
	day        time.Time
	exclusions []domain.TimeExclusion
}

func (s *Service) loadDay(providerID, serviceID int64, staffMemberID *int64, date string, allowInactive bool) (*dayContext, error) {
	provider, err := s.store.GetProviderByID(providerID)
	if err != nil {
		return nil, lookup(err, ErrProviderNotFound, "获取服务商失败")
	}

	dc := &dayContext{
		provider: provider,
		norm:     s.Normalizer(provider),
		date:     date,
	}

	dc.day, err = dc.norm.ParseDate(date)
	if err != nil {
		return nil, err
	}

	dc.service, err = s.store.GetServiceByID(serviceID)
	if err != nil {
		return nil, lookup(err, ErrServiceNotFound, "获取服务失败")
	}
	// 其他服务商的服务对当前服务商来说等同于不存在
	if dc.service.ProviderID != provider.ID {
		return nil, ErrServiceNotFound
	}
	if !dc.service.IsActive && !allowInactive {
		return nil, ErrServiceInactive
	}

	if staffMemberID != nil {
		dc.staff, err = s.store.GetStaffMemberByID(*staffMemberID)
		if err != nil {
			return nil, lookup(err, ErrStaffMemberNotFound, "获取员工失败")
		}
		if dc.staff.ProviderID != provider.ID {
			return nil, ErrStaffMemberNotFound
		}
		if !dc.staff.IsActive && !allowInactive {
			return nil, ErrStaffMemberInactive
		}
	}

	exclusions, err := s.store.GetActiveTimeExclusionsByProviderID(provider.ID)
	if err != nil {
		return nil, fmt.Errorf("获取屏蔽时段失败: %w", err)
	}
	dc.exclusions = make([]domain.TimeExclusion, 0, len(exclusions))
	for _, ex := range exclusions {
		dc.exclusions = append(dc.exclusions, *ex)
	}

	return dc, nil
}

func (dc *dayContext) bounds() (time.Time, time.Time) {
	return dc.norm.DayBounds(dc.day)
}

func (dc *dayContext) staffMemberID() *int64 {
	if dc.staff == nil {
		return nil
	}
	id := dc.staff.ID
	return &id
}

// request 构造引擎的输入，ignoreBookingID 不为 0 时忽略该预约（改期时忽略预约自身）
func (dc *dayContext) request(bookings []*domain.Booking, granularity int, ignoreBookingID int64) availability.Request {
	active := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if ignoreBookingID != 0 && b.ID == ignoreBookingID {
			continue
		}
		active = append(active, *b)
	}

	req := availability.Request{
		Provider:        dc.provider.Schedule,
		StaffMemberID:   dc.staffMemberID(),
		Date:            dc.day,
		DurationMinutes: int(dc.service.DurationMinutes),
		Granularity:     granularity,
		Exclusions:      dc.exclusions,
		Bookings:        active,
		Normalizer:      dc.norm,
	}
	if dc.staff != nil {
		req.Staff = dc.staff.Schedule
	}
	return req
}

var reasonText = map[availability.Reason]string{
	availability.ReasonBreak:       "休息时间",
	availability.ReasonExcluded:    "屏蔽时段",
	availability.ReasonClosed:      "非营业时间",
	availability.ReasonNonexistent: "夏令时切换，该时间不存在",
}

// check 检查从 startMinute 开始的时段能否预约
func (dc *dayContext) check(bookings []*domain.Booking, startMinute int, ignoreBookingID int64) (availability.Slot, error) {
	slot := availability.Evaluate(dc.request(bookings, 0, ignoreBookingID), startMinute)
	switch {
	case slot.Available:
		return slot, nil
	case slot.Reason == availability.ReasonBooked:
		return slot, ErrSlotUnavailable
	default:
		return slot, fmt.Errorf("%w（%s）", ErrSlotNotOffered, reasonText[slot.Reason])
	}
}

// startOf 解析当地日期和时间，并拒绝已经过去的时间
func (s *Service) startOf(dc *dayContext, clock string) (int, error) {
	startMinute, err := availability.ParseClock(clock)
	if err != nil {
		return 0, err
	}
	start, err := dc.norm.ToCanonical(dc.date, clock)
	if err != nil {
		return 0, err
	}
	if !start.After(s.now()) {
		return 0, ErrBookingInPast
	}
	return startMinute, nil
}
