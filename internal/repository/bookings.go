package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/booking"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

const bookingColumns = `id, provider_id, service_id, staff_member_id, client_name, client_phone, client_email, notes, start_time, end_time, status, cancellation_reason, created_at, version`

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	var staffMemberID sql.NullInt64

	dst := []any{
		&b.ID,
		&b.ProviderID,
		&b.ServiceID,
		&staffMemberID,
		&b.ClientName,
		&b.ClientPhone,
		&b.ClientEmail,
		&b.Notes,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.CancellationReason,
		&b.CreatedAt,
		&b.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	b.StaffMemberID = int64Ptr(staffMemberID)
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()

	return b, nil
}

func (r *Repository) queryBookings(query string, args ...any) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *Repository) GetBookingByID(id int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

// GetBookingsByProviderBetween 返回与 [from, to) 有重叠的所有预约，包括已取消和已完成的
func (r *Repository) GetBookingsByProviderBetween(providerID int64, from, to time.Time) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE provider_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time, id
	`

	return r.queryBookings(query, providerID, from, to)
}

func (r *Repository) GetPendingBookingsStartedBefore(before time.Time) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND start_time < $1
		ORDER BY start_time, id
	`

	return r.queryBookings(query, before)
}

func (r *Repository) CreateBooking(b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		INSERT INTO bookings (provider_id, service_id, staff_member_id, client_name, client_phone, client_email, notes, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, cancellation_reason, created_at, version
	`

	args := []any{
		b.ProviderID,
		b.ServiceID,
		nullableInt64(b.StaffMemberID),
		b.ClientName,
		b.ClientPhone,
		b.ClientEmail,
		b.Notes,
		b.StartTime,
		b.EndTime,
		b.Status,
	}
	dst := []any{&b.ID, &b.CancellationReason, &b.CreatedAt, &b.Version}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// UpdateBooking 版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateBooking(b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		UPDATE bookings
		SET
			staff_member_id = $1,
			start_time = $2,
			end_time = $3,
			status = $4,
			cancellation_reason = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{nullableInt64(b.StaffMemberID), b.StartTime, b.EndTime, b.Status, b.CancellationReason, b.ID, b.Version}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&b.Version); err != nil {
		return err
	}

	return nil
}

// bookingLockKey 锁的粒度是服务商加当地日期，未指定员工的预约会占用所有员工，所以不能按员工加锁
func bookingLockKey(providerID int64, date string) string {
	return fmt.Sprintf("booking:%d:%s", providerID, date)
}

// WithinBookingLock 开启事务并获取事务级的咨询锁，fn 中的读写都在同一个事务中进行
// 锁在事务提交或回滚时自动释放
func (r *Repository) WithinBookingLock(providerID int64, date string, fn func(w booking.BookingWriter) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	if _, err := tx.ExecContext(ctx, query, bookingLockKey(providerID, date)); err != nil {
		return err
	}

	if err := fn(r.withTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
