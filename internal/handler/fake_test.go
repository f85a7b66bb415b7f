package handler

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/booking"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// fakeRepository 内存实现的 Repository
type fakeRepository struct {
	mu     sync.Mutex
	lockMu sync.Mutex

	providers  map[int64]*domain.Provider
	staff      map[int64]*domain.StaffMember
	services   map[int64]*domain.Service
	exclusions map[int64]*domain.TimeExclusion
	bookings   map[int64]*domain.Booking
	nextID     int64

	deleteErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		providers:  make(map[int64]*domain.Provider),
		staff:      make(map[int64]*domain.StaffMember),
		services:   make(map[int64]*domain.Service),
		exclusions: make(map[int64]*domain.TimeExclusion),
		bookings:   make(map[int64]*domain.Booking),
		nextID:     1000,
	}
}

func (f *fakeRepository) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) GetProviderByID(id int64) (*domain.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepository) GetProviderByUsername(username string) (*domain.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.providers {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) CheckProviderEmailExists(email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.providers {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) UpdateProvider(p *domain.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.providers[p.ID]
	if !ok || stored.Version != p.Version {
		return sql.ErrNoRows
	}
	p.Version++
	cp := *p
	f.providers[p.ID] = &cp
	return nil
}

func (f *fakeRepository) GetStaffMemberByID(id int64) (*domain.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sm, ok := f.staff[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sm
	return &cp, nil
}

func (f *fakeRepository) GetStaffMembersByProviderID(providerID int64) ([]*domain.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.StaffMember
	for _, sm := range f.staff {
		if sm.ProviderID == providerID {
			cp := *sm
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) CreateStaffMember(sm *domain.StaffMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sm.ID = f.id()
	sm.Version = 1
	cp := *sm
	f.staff[sm.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdateStaffMember(sm *domain.StaffMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sm.Version++
	cp := *sm
	f.staff[sm.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteStaffMember(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.staff, id)
	return nil
}

func (f *fakeRepository) GetServiceByID(id int64) (*domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc, ok := f.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *svc
	return &cp, nil
}

func (f *fakeRepository) GetServicesByProviderID(providerID int64, onlyActive bool) ([]*domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Service
	for _, svc := range f.services {
		if svc.ProviderID == providerID && (svc.IsActive || !onlyActive) {
			cp := *svc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) CreateService(svc *domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc.ID = f.id()
	svc.Version = 1
	cp := *svc
	f.services[svc.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdateService(svc *domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc.Version++
	cp := *svc
	f.services[svc.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteService(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.services, id)
	return nil
}

func (f *fakeRepository) GetTimeExclusionByID(id int64) (*domain.TimeExclusion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ex, ok := f.exclusions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *ex
	return &cp, nil
}

func (f *fakeRepository) GetTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.TimeExclusion
	for _, ex := range f.exclusions {
		if ex.ProviderID == providerID {
			cp := *ex
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetActiveTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error) {
	all, _ := f.GetTimeExclusionsByProviderID(providerID)
	var out []*domain.TimeExclusion
	for _, ex := range all {
		if ex.IsActive {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (f *fakeRepository) CreateTimeExclusion(ex *domain.TimeExclusion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ex.ID = f.id()
	ex.Version = 1
	cp := *ex
	f.exclusions[ex.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdateTimeExclusion(ex *domain.TimeExclusion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ex.Version++
	cp := *ex
	f.exclusions[ex.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteTimeExclusion(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.exclusions, id)
	return nil
}

func (f *fakeRepository) GetBookingByID(id int64) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepository) GetBookingsByProviderBetween(providerID int64, from, to time.Time) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID && availability.Overlaps(b.StartTime.UnixNano(), b.EndTime.UnixNano(), from.UnixNano(), to.UnixNano()) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetPendingBookingsStartedBefore(before time.Time) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.Status == domain.BookingStatusPending && b.StartTime.Before(before) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) CreateBooking(b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	b.Version = 1
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdateBooking(b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[b.ID]
	if !ok || stored.Version != b.Version {
		return sql.ErrNoRows
	}
	b.Version++
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeRepository) WithinBookingLock(providerID int64, date string, fn func(w booking.BookingWriter) error) error {
	f.lockMu.Lock()
	defer f.lockMu.Unlock()
	return fn(f)
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []domain.MailMessage
}

func (p *fakePublisher) Publish(msg domain.MailMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePublisher) last() (domain.MailMessage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sent) == 0 {
		return domain.MailMessage{}, false
	}
	return p.sent[len(p.sent)-1], true
}

type fakeOTPStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *fakeOTPStore) Set(_ context.Context, key, otp string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = otp
	return nil
}

func (s *fakeOTPStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *fakeOTPStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

var _ Repository = (*fakeRepository)(nil)
