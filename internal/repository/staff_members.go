package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

const staffMemberColumns = `id, provider_id, name, email, phone, is_active, has_own_schedule, work_start, work_end, break_start, break_end, created_at, version`

// scanStaffMember 没有自己的工作时间时 Schedule 为空
func scanStaffMember(row interface{ Scan(dest ...any) error }) (*domain.StaffMember, error) {
	sm := &domain.StaffMember{}
	var hasOwnSchedule bool
	var schedule domain.WorkSchedule
	var breakStart, breakEnd sql.NullInt32

	dst := []any{
		&sm.ID,
		&sm.ProviderID,
		&sm.Name,
		&sm.Email,
		&sm.Phone,
		&sm.IsActive,
		&hasOwnSchedule,
		&schedule.WorkStart,
		&schedule.WorkEnd,
		&breakStart,
		&breakEnd,
		&sm.CreatedAt,
		&sm.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if hasOwnSchedule {
		schedule.BreakStart = int32Ptr(breakStart)
		schedule.BreakEnd = int32Ptr(breakEnd)
		schedule.WorkingDays = make([]int32, 0, 7)
		sm.Schedule = &schedule
	}

	return sm, nil
}

func staffScheduleArgs(sm *domain.StaffMember) []any {
	if sm.Schedule == nil {
		return []any{false, 0, 0, sql.NullInt32{}, sql.NullInt32{}}
	}
	return append([]any{true}, scheduleArgs(*sm.Schedule)...)
}

func staffWorkingDays(sm *domain.StaffMember) []int32 {
	if sm.Schedule == nil {
		return nil
	}
	return sm.Schedule.WorkingDays
}

func (r *Repository) GetStaffMemberByID(id int64) (*domain.StaffMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `SELECT ` + staffMemberColumns + ` FROM staff_members WHERE id = $1`

	sm, err := scanStaffMember(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if sm.Schedule != nil {
		sm.Schedule.WorkingDays, err = getWorkingDays(ctx, r.db, staffMemberWorkingDays, sm.ID)
		if err != nil {
			return nil, err
		}
	}

	return sm, nil
}

func (r *Repository) GetStaffMembersByProviderID(providerID int64) ([]*domain.StaffMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `SELECT ` + staffMemberColumns + ` FROM staff_members WHERE provider_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.StaffMember, 0)
	for rows.Next() {
		sm, err := scanStaffMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, sm)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	days, err := getStaffWorkingDaysByProvider(ctx, r.db, providerID)
	if err != nil {
		return nil, err
	}
	for _, sm := range members {
		if sm.Schedule != nil && days[sm.ID] != nil {
			sm.Schedule.WorkingDays = days[sm.ID]
		}
	}

	return members, nil
}

func (r *Repository) CreateStaffMember(sm *domain.StaffMember) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO staff_members (provider_id, name, email, phone, is_active, has_own_schedule, work_start, work_end, break_start, break_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`
	args := append([]any{sm.ProviderID, sm.Name, sm.Email, sm.Phone, sm.IsActive}, staffScheduleArgs(sm)...)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&sm.ID, &sm.CreatedAt, &sm.Version); err != nil {
		return err
	}

	if err := replaceWorkingDays(ctx, tx, staffMemberWorkingDays, sm.ID, staffWorkingDays(sm)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateStaffMember 版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateStaffMember(sm *domain.StaffMember) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE staff_members
		SET
			name = $1,
			email = $2,
			phone = $3,
			is_active = $4,
			has_own_schedule = $5,
			work_start = $6,
			work_end = $7,
			break_start = $8,
			break_end = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`
	args := append([]any{sm.Name, sm.Email, sm.Phone, sm.IsActive}, staffScheduleArgs(sm)...)
	args = append(args, sm.ID, sm.Version)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&sm.Version); err != nil {
		return err
	}

	if err := replaceWorkingDays(ctx, tx, staffMemberWorkingDays, sm.ID, staffWorkingDays(sm)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeleteStaffMember 存在预约的员工无法删除（外键约束 bookings_staff_member_id_fkey），只能停用
func (r *Repository) DeleteStaffMember(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		DELETE FROM staff_members WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
