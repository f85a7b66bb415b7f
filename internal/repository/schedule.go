package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

func nullableInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}

func int32Ptr(v sql.NullInt32) *int32 {
	if !v.Valid {
		return nil
	}
	i := v.Int32
	return &i
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

// workingDaysTable 工作日关联表
type workingDaysTable struct {
	name   string
	column string
}

var (
	providerWorkingDays    = workingDaysTable{name: "provider_working_days", column: "provider_id"}
	staffMemberWorkingDays = workingDaysTable{name: "staff_member_working_days", column: "staff_member_id"}
)

// replaceWorkingDays 用 days 覆盖 ownerID 的工作日，需要在事务中调用
func replaceWorkingDays(ctx context.Context, tx *sql.Tx, table workingDaysTable, ownerID int64, days []int32) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.name, table.column)
	if _, err := tx.ExecContext(ctx, query, ownerID); err != nil {
		return err
	}

	query = fmt.Sprintf(`INSERT INTO %s (%s, day) VALUES ($1, $2)`, table.name, table.column)
	for _, day := range days {
		if _, err := tx.ExecContext(ctx, query, ownerID, day); err != nil {
			return err
		}
	}

	return nil
}

// getWorkingDays 按升序返回 ownerID 的工作日
func getWorkingDays(ctx context.Context, db querier, table workingDaysTable, ownerID int64) ([]int32, error) {
	query := fmt.Sprintf(`SELECT day FROM %s WHERE %s = $1 ORDER BY day`, table.name, table.column)

	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]int32, 0, 7)
	for rows.Next() {
		var day int32
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

// getStaffWorkingDaysByProvider 批量获取服务商下所有员工的工作日，避免列表查询时逐条查询
func getStaffWorkingDaysByProvider(ctx context.Context, db querier, providerID int64) (map[int64][]int32, error) {
	query := `
		SELECT smwd.staff_member_id, smwd.day
		FROM staff_member_working_days smwd
		JOIN staff_members sm ON sm.id = smwd.staff_member_id
		WHERE sm.provider_id = $1
		ORDER BY smwd.day
	`

	rows, err := db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make(map[int64][]int32)
	for rows.Next() {
		var staffMemberID int64
		var day int32
		if err := rows.Scan(&staffMemberID, &day); err != nil {
			return nil, err
		}
		days[staffMemberID] = append(days[staffMemberID], day)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

func scheduleArgs(s domain.WorkSchedule) []any {
	return []any{s.WorkStart, s.WorkEnd, nullableInt32(s.BreakStart), nullableInt32(s.BreakEnd)}
}
