package booking

import (
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

const monday = "2025-06-16"

func int32Ptr(v int32) *int32 { return &v }
func int64Ptr(v int64) *int64 { return &v }

var fixedNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*fakeStore, *fakeNotifier, *Service) {
	t.Helper()

	store := newFakeStore()
	store.providers[1] = &domain.Provider{
		ID:       1,
		Name:     "测试诊所",
		Email:    "provider@example.com",
		Timezone: "America/Sao_Paulo",
		Schedule: domain.WorkSchedule{
			WorkingDays: []int32{1, 2, 3, 4, 5},
			WorkStart:   9 * 60,
			WorkEnd:     18 * 60,
		},
	}
	store.providers[2] = &domain.Provider{ID: 2, Name: "其他服务商", Timezone: "UTC"}

	store.staff[11] = &domain.StaffMember{ID: 11, ProviderID: 1, Name: "员工甲", IsActive: true}
	store.staff[12] = &domain.StaffMember{ID: 12, ProviderID: 1, Name: "员工乙", IsActive: true}
	store.staff[13] = &domain.StaffMember{ID: 13, ProviderID: 1, Name: "已离职", IsActive: false}
	store.staff[21] = &domain.StaffMember{ID: 21, ProviderID: 2, Name: "别家员工", IsActive: true}

	store.services[1] = &domain.Service{ID: 1, ProviderID: 1, Name: "咨询", DurationMinutes: 60, IsActive: true}
	store.services[2] = &domain.Service{ID: 2, ProviderID: 1, Name: "已停用", DurationMinutes: 30, IsActive: false}
	store.services[3] = &domain.Service{ID: 3, ProviderID: 2, Name: "别家服务", DurationMinutes: 30, IsActive: true}

	notifier := &fakeNotifier{}
	svc := NewService(store, WithNotifier(notifier), WithClock(func() time.Time { return fixedNow }))
	return store, notifier, svc
}

func localInstant(t *testing.T, date, clock string) time.Time {
	t.Helper()
	n, err := availability.LoadNormalizer("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	instant, err := n.ToCanonical(date, clock)
	if err != nil {
		t.Fatal(err)
	}
	return instant
}

func addBooking(t *testing.T, store *fakeStore, start, end string, status domain.BookingStatus, staffID *int64) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		ProviderID:    1,
		ServiceID:     1,
		StaffMemberID: staffID,
		ClientName:    "已有客户",
		StartTime:     localInstant(t, monday, start),
		EndTime:       localInstant(t, monday, end),
		Status:        status,
	}
	if err := store.CreateBooking(b); err != nil {
		t.Fatal(err)
	}
	return b
}

func slotByStart(a *Availability, start string) (availability.Slot, bool) {
	for _, s := range a.Slots {
		if s.StartTime == start {
			return s, true
		}
	}
	return availability.Slot{}, false
}

func TestComputeAvailability(t *testing.T) {
	store, _, svc := newFixture(t)
	addBooking(t, store, "10:00", "11:00", domain.BookingStatusConfirmed, nil)

	got, err := svc.ComputeAvailability(AvailabilityQuery{ProviderID: 1, ServiceID: 1, Date: monday})
	if err != nil {
		t.Fatal(err)
	}

	if !got.IsWorkingDay || got.Timezone != "America/Sao_Paulo" || got.DurationMinutes != 60 {
		t.Fatalf("unexpected availability header %+v", got)
	}
	if len(got.Slots) != 17 {
		t.Fatalf("expected 17 slots, got %d", len(got.Slots))
	}
	for _, start := range []string{"09:30", "10:00", "10:30"} {
		if s, _ := slotByStart(got, start); s.Available || s.Reason != availability.ReasonBooked {
			t.Errorf("slot %s should be booked, got %+v", start, s)
		}
	}
	for _, start := range []string{"09:00", "11:00"} {
		if s, _ := slotByStart(got, start); !s.Available {
			t.Errorf("slot %s should be available, got %+v", start, s)
		}
	}

	first, _ := slotByStart(got, "09:00")
	if !first.StartAt.Equal(time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("09:00 in Sao Paulo should be 12:00 UTC, got %v", first.StartAt)
	}
}

func TestComputeAvailabilitySunday(t *testing.T) {
	_, _, svc := newFixture(t)

	got, err := svc.ComputeAvailability(AvailabilityQuery{ProviderID: 1, ServiceID: 1, Date: "2025-06-15"})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsWorkingDay || len(got.Slots) != 0 {
		t.Fatalf("expected non-working day, got %+v", got)
	}
}

func TestComputeAvailabilityErrors(t *testing.T) {
	tests := []struct {
		name  string
		query AvailabilityQuery
		want  error
	}{
		{"服务商不存在", AvailabilityQuery{ProviderID: 9, ServiceID: 1, Date: monday}, ErrProviderNotFound},
		{"服务不存在", AvailabilityQuery{ProviderID: 1, ServiceID: 9, Date: monday}, ErrServiceNotFound},
		{"其他服务商的服务", AvailabilityQuery{ProviderID: 1, ServiceID: 3, Date: monday}, ErrServiceNotFound},
		{"服务已停用", AvailabilityQuery{ProviderID: 1, ServiceID: 2, Date: monday}, ErrServiceInactive},
		{"其他服务商的员工", AvailabilityQuery{ProviderID: 1, ServiceID: 1, StaffMemberID: int64Ptr(21), Date: monday}, ErrStaffMemberNotFound},
		{"员工已停用", AvailabilityQuery{ProviderID: 1, ServiceID: 1, StaffMemberID: int64Ptr(13), Date: monday}, ErrStaffMemberInactive},
		{"日期无效", AvailabilityQuery{ProviderID: 1, ServiceID: 1, Date: "2025-02-30"}, availability.ErrInvalidDate},
		{"粒度过大", AvailabilityQuery{ProviderID: 1, ServiceID: 1, Date: monday, Granularity: 121}, ErrInvalidGranularity},
		{"粒度为负", AvailabilityQuery{ProviderID: 1, ServiceID: 1, Date: monday, Granularity: -1}, ErrInvalidGranularity},
	}

	_, _, svc := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ComputeAvailability(tt.query); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestComputeAvailabilityStaffScope(t *testing.T) {
	store, _, svc := newFixture(t)
	addBooking(t, store, "09:00", "10:00", domain.BookingStatusConfirmed, int64Ptr(12))
	addBooking(t, store, "14:00", "15:00", domain.BookingStatusPending, nil)

	got, err := svc.ComputeAvailability(AvailabilityQuery{ProviderID: 1, ServiceID: 1, StaffMemberID: int64Ptr(11), Date: monday, Granularity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := slotByStart(got, "09:00"); !s.Available {
		t.Errorf("another staff member's booking must not block, got %+v", s)
	}
	if s, _ := slotByStart(got, "14:00"); s.Reason != availability.ReasonBooked {
		t.Errorf("a booking without staff must block every staff member, got %+v", s)
	}
}

func TestComputeAvailabilityMisconfiguredHours(t *testing.T) {
	store, _, svc := newFixture(t)
	store.providers[1].Schedule.WorkStart = 18 * 60
	store.providers[1].Schedule.WorkEnd = 9 * 60

	got, err := svc.ComputeAvailability(AvailabilityQuery{ProviderID: 1, ServiceID: 1, Date: monday, Granularity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Warnings) != 1 || len(got.Slots) != 24 {
		t.Fatalf("expected full-day fallback with a warning, got %d slots, warnings %v", len(got.Slots), got.Warnings)
	}
}

func TestCreateBooking(t *testing.T) {
	store, notifier, svc := newFixture(t)

	view, err := svc.CreateBooking(CreateBookingRequest{
		ProviderID:  1,
		ServiceID:   1,
		Date:        monday,
		Time:        "09:00",
		ClientName:  "张三",
		ClientPhone: "+5511987654321",
		ClientEmail: "client@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	if view.Status != domain.BookingStatusPending {
		t.Fatalf("expected pending, got %s", view.Status)
	}
	if !view.StartTime.Equal(time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)) || view.EndTime.Sub(view.StartTime) != time.Hour {
		t.Fatalf("unexpected booking interval %v - %v", view.StartTime, view.EndTime)
	}
	if view.LocalDate != monday || view.LocalStartTime != "09:00" || view.LocalEndTime != "10:00" {
		t.Fatalf("unexpected local view %+v", view)
	}
	if store.countActive() != 1 {
		t.Fatalf("expected 1 stored booking, got %d", store.countActive())
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Type != domain.MailTypeBookingCreated || notifier.sent[0].To != "client@example.com" {
		t.Fatalf("unexpected client mail %+v", notifier.sent[0])
	}
	if notifier.sent[1].Type != domain.MailTypeNewBookingToProvider || notifier.sent[1].To != "provider@example.com" {
		t.Fatalf("unexpected provider mail %+v", notifier.sent[1])
	}
	data := notifier.sent[0].Data.(domain.BookingMailData)
	if data.StartTime != "09:00" || data.ServiceName != "咨询" || data.Status != "待确认" {
		t.Fatalf("unexpected mail data %+v", data)
	}
}

func TestCreateBookingRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(store *fakeStore)
		req   CreateBookingRequest
		want  error
	}{
		{"时段已被预约", nil, CreateBookingRequest{Time: "10:30"}, ErrSlotUnavailable},
		{
			name: "休息时间",
			setup: func(store *fakeStore) {
				store.providers[1].Schedule.BreakStart = int32Ptr(12 * 60)
				store.providers[1].Schedule.BreakEnd = int32Ptr(13 * 60)
			},
			req:  CreateBookingRequest{Time: "11:30"},
			want: ErrSlotNotOffered,
		},
		{
			name: "屏蔽时段",
			setup: func(store *fakeStore) {
				store.exclusions = append(store.exclusions, &domain.TimeExclusion{ProviderID: 1, StartTime: 15 * 60, EndTime: 16 * 60, IsActive: true})
			},
			req:  CreateBookingRequest{Time: "15:00"},
			want: ErrSlotNotOffered,
		},
		{"超出工作时间", nil, CreateBookingRequest{Time: "17:30"}, ErrSlotNotOffered},
		{"非工作日", nil, CreateBookingRequest{Date: "2025-06-15", Time: "10:00"}, ErrSlotNotOffered},
		{"已经过去的时间", nil, CreateBookingRequest{Date: "2025-06-09", Time: "10:00"}, ErrBookingInPast},
		{"时间格式错误", nil, CreateBookingRequest{Time: "25:00"}, availability.ErrInvalidTimeFormat},
		{"状态无效", nil, CreateBookingRequest{Time: "09:00", Status: domain.BookingStatusCompleted}, ErrInvalidStatus},
		{"员工已停用", nil, CreateBookingRequest{Time: "09:00", StaffMemberID: int64Ptr(13)}, ErrStaffMemberInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, svc := newFixture(t)
			if tt.setup != nil {
				tt.setup(store)
			}
			addBooking(t, store, "10:00", "11:00", domain.BookingStatusConfirmed, nil)

			req := tt.req
			req.ProviderID = 1
			req.ServiceID = 1
			req.ClientName = "张三"
			if req.Date == "" {
				req.Date = monday
			}

			if _, err := svc.CreateBooking(req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if store.countActive() != 1 {
				t.Fatalf("rejected booking must not be stored")
			}
		})
	}
}

func TestCreateBookingBackToBack(t *testing.T) {
	store, _, svc := newFixture(t)
	addBooking(t, store, "09:00", "10:00", domain.BookingStatusConfirmed, nil)

	if _, err := svc.CreateBooking(CreateBookingRequest{ProviderID: 1, ServiceID: 1, Date: monday, Time: "10:00", ClientName: "李四"}); err != nil {
		t.Fatalf("back-to-back booking rejected: %v", err)
	}
}

func TestCreateBookingCancelledDoesNotBlock(t *testing.T) {
	store, _, svc := newFixture(t)
	addBooking(t, store, "09:00", "10:00", domain.BookingStatusCancelled, nil)
	addBooking(t, store, "09:00", "10:00", domain.BookingStatusCompleted, nil)

	if _, err := svc.CreateBooking(CreateBookingRequest{ProviderID: 1, ServiceID: 1, Date: monday, Time: "09:00", ClientName: "李四"}); err != nil {
		t.Fatalf("cancelled or completed bookings must not block: %v", err)
	}
}

func TestCreateBookingConflictAtCommit(t *testing.T) {
	store, notifier, svc := newFixture(t)

	// 检查通过之后、获取锁之前，其他请求抢先预约了重叠的时段
	store.beforeLock = func() {
		store.beforeLock = nil
		addBooking(t, store, "09:30", "10:30", domain.BookingStatusPending, int64Ptr(11))
	}

	_, err := svc.CreateBooking(CreateBookingRequest{ProviderID: 1, ServiceID: 1, StaffMemberID: int64Ptr(11), Date: monday, Time: "09:00", ClientName: "张三"})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
	if store.countActive() != 1 {
		t.Fatalf("expected only the competing booking to be stored, got %d", store.countActive())
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("no mail should be sent for a rejected booking")
	}
}

func TestCreateBookingConcurrent(t *testing.T) {
	store, _, svc := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(CreateBookingRequest{ProviderID: 1, ServiceID: 1, Date: monday, Time: "14:00", ClientName: "并发客户"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, ErrSlotUnavailable):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 || store.countActive() != 1 {
		t.Fatalf("expected exactly one booking, got %d successes and %d stored", succeeded, store.countActive())
	}
}

func TestCreateBookingNotifierFailure(t *testing.T) {
	_, notifier, svc := newFixture(t)
	notifier.err = errStoreDown

	if _, err := svc.CreateBooking(CreateBookingRequest{ProviderID: 1, ServiceID: 1, Date: monday, Time: "09:00", ClientName: "张三", ClientEmail: "c@example.com"}); err != nil {
		t.Fatalf("mail failures must not fail the booking: %v", err)
	}
}

func TestUpdateBookingStatus(t *testing.T) {
	tests := []struct {
		from domain.BookingStatus
		to   domain.BookingStatus
		ok   bool
	}{
		{domain.BookingStatusPending, domain.BookingStatusConfirmed, true},
		{domain.BookingStatusPending, domain.BookingStatusCancelled, true},
		{domain.BookingStatusPending, domain.BookingStatusCompleted, true},
		{domain.BookingStatusConfirmed, domain.BookingStatusCompleted, true},
		{domain.BookingStatusConfirmed, domain.BookingStatusCancelled, true},
		{domain.BookingStatusConfirmed, domain.BookingStatusPending, false},
		{domain.BookingStatusCancelled, domain.BookingStatusConfirmed, false},
		{domain.BookingStatusCompleted, domain.BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			store, _, svc := newFixture(t)
			b := addBooking(t, store, "09:00", "10:00", tt.from, nil)

			view, err := svc.UpdateBookingStatus(1, b.ID, tt.to, "客户临时有事")
			if !tt.ok {
				if !errors.Is(err, ErrInvalidStatusTransition) {
					t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if view.Status != tt.to {
				t.Fatalf("expected %s, got %s", tt.to, view.Status)
			}
			if tt.to == domain.BookingStatusCancelled && view.CancellationReason != "客户临时有事" {
				t.Fatalf("cancellation reason not stored")
			}
		})
	}
}

func TestUpdateBookingStatusErrors(t *testing.T) {
	store, _, svc := newFixture(t)
	b := addBooking(t, store, "09:00", "10:00", domain.BookingStatusPending, nil)

	if _, err := svc.UpdateBookingStatus(2, b.ID, domain.BookingStatusConfirmed, ""); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("other provider must not see the booking, got %v", err)
	}
	if _, err := svc.UpdateBookingStatus(1, 9999, domain.BookingStatusConfirmed, ""); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if _, err := svc.UpdateBookingStatus(1, b.ID, "archived", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	store.bookings[b.ID].Version = 42
	if _, err := svc.UpdateBookingStatus(1, b.ID, domain.BookingStatusConfirmed, ""); err != nil {
		t.Fatalf("fresh read should succeed: %v", err)
	}
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	store, _, svc := newFixture(t)
	b := addBooking(t, store, "09:00", "10:00", domain.BookingStatusConfirmed, nil)

	req := CreateBookingRequest{ProviderID: 1, ServiceID: 1, Date: monday, Time: "09:00", ClientName: "张三"}
	if _, err := svc.CreateBooking(req); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
	if _, err := svc.UpdateBookingStatus(1, b.ID, domain.BookingStatusCancelled, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateBooking(req); err != nil {
		t.Fatalf("cancelled booking should free the slot: %v", err)
	}
}

func TestRescheduleBooking(t *testing.T) {
	store, notifier, svc := newFixture(t)
	b := addBooking(t, store, "09:00", "10:00", domain.BookingStatusConfirmed, int64Ptr(11))
	b.ClientEmail = "client@example.com"
	store.bookings[b.ID].ClientEmail = b.ClientEmail
	addBooking(t, store, "11:00", "12:00", domain.BookingStatusConfirmed, int64Ptr(11))

	// 和自己原来的时段重叠是允许的
	view, err := svc.RescheduleBooking(RescheduleRequest{ProviderID: 1, BookingID: b.ID, Date: monday, Time: "09:30"})
	if err != nil {
		t.Fatal(err)
	}
	if view.LocalStartTime != "09:30" || view.LocalEndTime != "10:30" || *view.StaffMemberID != 11 {
		t.Fatalf("unexpected rescheduled booking %+v", view)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Type != domain.MailTypeBookingStatusChanged {
		t.Fatalf("expected a status change mail, got %+v", notifier.sent)
	}

	if _, err := svc.RescheduleBooking(RescheduleRequest{ProviderID: 1, BookingID: b.ID, Date: monday, Time: "10:30"}); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	// 换一个员工就没有冲突
	view, err = svc.RescheduleBooking(RescheduleRequest{ProviderID: 1, BookingID: b.ID, Date: monday, Time: "11:00", StaffMemberID: int64Ptr(12)})
	if err != nil {
		t.Fatal(err)
	}
	if *view.StaffMemberID != 12 {
		t.Fatalf("expected staff 12, got %d", *view.StaffMemberID)
	}
}

func TestRescheduleBookingErrors(t *testing.T) {
	store, _, svc := newFixture(t)
	cancelled := addBooking(t, store, "09:00", "10:00", domain.BookingStatusCancelled, nil)
	active := addBooking(t, store, "13:00", "14:00", domain.BookingStatusPending, nil)

	if _, err := svc.RescheduleBooking(RescheduleRequest{ProviderID: 1, BookingID: cancelled.ID, Date: monday, Time: "15:00"}); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if _, err := svc.RescheduleBooking(RescheduleRequest{ProviderID: 1, BookingID: active.ID, Date: "2025-06-02", Time: "15:00"}); !errors.Is(err, ErrBookingInPast) {
		t.Fatalf("expected ErrBookingInPast, got %v", err)
	}
	if _, err := svc.RescheduleBooking(RescheduleRequest{ProviderID: 2, BookingID: active.ID, Date: monday, Time: "15:00"}); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	store.failUpdate = errStoreDown
	if _, err := svc.RescheduleBooking(RescheduleRequest{ProviderID: 1, BookingID: active.ID, Date: monday, Time: "15:00"}); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestExpireStalePendingBookings(t *testing.T) {
	store, notifier, svc := newFixture(t)
	svc.now = func() time.Time { return localInstant(t, monday, "12:00") }

	stale := addBooking(t, store, "09:00", "10:00", domain.BookingStatusPending, nil)
	store.bookings[stale.ID].ClientEmail = "client@example.com"
	recent := addBooking(t, store, "11:45", "12:45", domain.BookingStatusPending, nil)
	confirmed := addBooking(t, store, "09:00", "10:00", domain.BookingStatusConfirmed, int64Ptr(11))
	future := addBooking(t, store, "15:00", "16:00", domain.BookingStatusPending, nil)

	expired, err := svc.ExpireStalePendingBookings(30 * time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired booking, got %d", expired)
	}

	if got := store.bookings[stale.ID]; got.Status != domain.BookingStatusCancelled || got.CancellationReason != ExpiredReason {
		t.Fatalf("stale booking not expired: %+v", got)
	}
	for _, id := range []int64{recent.ID, confirmed.ID, future.ID} {
		if store.bookings[id].Status == domain.BookingStatusCancelled {
			t.Fatalf("booking %d must not be expired", id)
		}
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Data.(domain.BookingMailData).Reason != ExpiredReason {
		t.Fatalf("expected an expiry mail, got %+v", notifier.sent)
	}
}

func TestListBookingsOnDate(t *testing.T) {
	store, _, svc := newFixture(t)
	addBooking(t, store, "09:00", "10:00", domain.BookingStatusConfirmed, int64Ptr(11))
	addBooking(t, store, "10:00", "11:00", domain.BookingStatusCancelled, int64Ptr(12))
	addBooking(t, store, "11:00", "12:00", domain.BookingStatusPending, nil)

	all, err := svc.ListBookingsOnDate(1, monday, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(all))
	}

	mine, err := svc.ListBookingsOnDate(1, monday, int64Ptr(11))
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].LocalStartTime != "09:00" {
		t.Fatalf("unexpected staff bookings %+v", mine)
	}

	other, err := svc.ListBookingsOnDate(1, "2025-06-17", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no bookings on another day, got %d", len(other))
	}
}

func TestNormalizerFallsBackToDefault(t *testing.T) {
	_, _, svc := newFixture(t)
	svc.defaultTimezone = "Asia/Shanghai"

	n := svc.Normalizer(&domain.Provider{ID: 1, Timezone: "Invalid/Zone"})
	if n.Name() != "Asia/Shanghai" {
		t.Fatalf("expected default timezone, got %s", n.Name())
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsInvalidInput(availability.ErrInvalidDate) || !IsInvalidInput(ErrSlotNotOffered) {
		t.Fatal("expected invalid input")
	}
	if !IsNotFound(ErrServiceNotFound) || IsNotFound(ErrSlotUnavailable) {
		t.Fatal("unexpected not found classification")
	}
	if !IsConflict(ErrSlotUnavailable) || !IsConflict(ErrEditConflict) || IsConflict(ErrBookingInPast) {
		t.Fatal("unexpected conflict classification")
	}
}

func TestCreateBookingSpringForward(t *testing.T) {
	store, _, svc := newFixture(t)
	store.providers[3] = &domain.Provider{
		ID:       3,
		Name:     "纽约诊所",
		Timezone: "America/New_York",
		Schedule: domain.WorkSchedule{WorkingDays: []int32{7}, WorkStart: 1 * 60, WorkEnd: 5 * 60},
	}
	store.services[4] = &domain.Service{ID: 4, ProviderID: 3, Name: "咨询", DurationMinutes: 60, IsActive: true}

	// 2026-03-08 当地 02:00 直接跳到 03:00
	const date = "2026-03-08"
	req := CreateBookingRequest{ProviderID: 3, ServiceID: 4, Date: date, Time: "01:00", ClientName: "张三"}

	got, err := svc.ComputeAvailability(AvailabilityQuery{ProviderID: 3, ServiceID: 4, Date: date, Granularity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := slotByStart(got, "02:00"); s.Available || s.Reason != availability.ReasonNonexistent {
		t.Fatalf("02:00 should not be offered, got %+v", s)
	}

	view, err := svc.CreateBooking(req)
	if err != nil {
		t.Fatal(err)
	}
	if !view.StartTime.Equal(time.Date(2026, 3, 8, 6, 0, 0, 0, time.UTC)) || view.EndTime.Sub(view.StartTime) != time.Hour {
		t.Fatalf("unexpected booking interval %v - %v", view.StartTime, view.EndTime)
	}
	if view.LocalEndTime != "03:00" {
		t.Fatalf("local end = %s, want 03:00", view.LocalEndTime)
	}

	if _, err := svc.CreateBooking(req); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("second booking at 01:00: expected ErrSlotUnavailable, got %v", err)
	}

	gap := req
	gap.Time = "02:00"
	if _, err := svc.CreateBooking(gap); !errors.Is(err, availability.ErrNonexistentLocalTime) {
		t.Fatalf("booking at 02:00: expected ErrNonexistentLocalTime, got %v", err)
	}

	next := req
	next.Time = "03:00"
	if _, err := svc.CreateBooking(next); err != nil {
		t.Fatalf("03:00 directly follows the 01:00 booking: %v", err)
	}
	if store.countActive() != 2 {
		t.Fatalf("expected 2 stored bookings, got %d", store.countActive())
	}
}
