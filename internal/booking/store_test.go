package booking

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// fakeStore 内存实现的 Store，WithinBookingLock 用互斥锁模拟数据库的咨询锁
type fakeStore struct {
	mu     sync.Mutex
	lockMu sync.Mutex

	providers  map[int64]*domain.Provider
	staff      map[int64]*domain.StaffMember
	services   map[int64]*domain.Service
	exclusions []*domain.TimeExclusion
	bookings   map[int64]*domain.Booking
	nextID     int64

	// beforeLock 在获取锁之前调用，用来模拟检查和提交之间其他请求插入的预约
	beforeLock func()
	failUpdate error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		providers: make(map[int64]*domain.Provider),
		staff:     make(map[int64]*domain.StaffMember),
		services:  make(map[int64]*domain.Service),
		bookings:  make(map[int64]*domain.Booking),
		nextID:    100,
	}
}

func (s *fakeStore) GetProviderByID(id int64) (*domain.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) GetStaffMemberByID(id int64) (*domain.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm, ok := s.staff[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sm
	return &cp, nil
}

func (s *fakeStore) GetServiceByID(id int64) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *svc
	return &cp, nil
}

func (s *fakeStore) GetBookingByID(id int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStore) GetActiveTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.TimeExclusion
	for _, ex := range s.exclusions {
		if ex.ProviderID == providerID && ex.IsActive {
			cp := *ex
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) GetBookingsByProviderBetween(providerID int64, from, to time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Booking
	for _, b := range s.bookings {
		if b.ProviderID != providerID {
			continue
		}
		if !availability.Overlaps(b.StartTime.UnixNano(), b.EndTime.UnixNano(), from.UnixNano(), to.UnixNano()) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) GetPendingBookingsStartedBefore(before time.Time) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Booking
	for _, b := range s.bookings {
		if b.Status == domain.BookingStatusPending && b.StartTime.Before(before) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateBooking(b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.Version = 1
	b.CreatedAt = time.Now()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateBooking(b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	stored, ok := s.bookings[b.ID]
	if !ok || stored.Version != b.Version {
		return sql.ErrNoRows
	}
	b.Version++
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeStore) WithinBookingLock(providerID int64, date string, fn func(w BookingWriter) error) error {
	if s.beforeLock != nil {
		s.beforeLock()
	}
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	return fn(s)
}

func (s *fakeStore) countActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.Status.Blocks() {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.MailMessage
	err  error
}

func (n *fakeNotifier) Publish(msg domain.MailMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

var errStoreDown = errors.New("store down")
