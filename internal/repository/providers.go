package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

const providerColumns = `id, username, password_hash, name, email, phone, timezone, work_start, work_end, break_start, break_end, created_at, version`

func scanProvider(row interface{ Scan(dest ...any) error }) (*domain.Provider, error) {
	p := &domain.Provider{}
	var breakStart, breakEnd sql.NullInt32

	dst := []any{
		&p.ID,
		&p.Username,
		&p.PasswordHash,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Timezone,
		&p.Schedule.WorkStart,
		&p.Schedule.WorkEnd,
		&breakStart,
		&breakEnd,
		&p.CreatedAt,
		&p.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	p.Schedule.BreakStart = int32Ptr(breakStart)
	p.Schedule.BreakEnd = int32Ptr(breakEnd)

	return p, nil
}

func (r *Repository) getProvider(where string, arg any) (*domain.Provider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `SELECT ` + providerColumns + ` FROM providers WHERE ` + where + ` = $1`

	p, err := scanProvider(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}

	p.Schedule.WorkingDays, err = getWorkingDays(ctx, r.db, providerWorkingDays, p.ID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) GetProviderByID(id int64) (*domain.Provider, error) {
	return r.getProvider("id", id)
}

func (r *Repository) GetProviderByUsername(username string) (*domain.Provider, error) {
	return r.getProvider("username", username)
}

func (r *Repository) GetAllProviders() ([]*domain.Provider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		SELECT ` + providerColumns + `, pwd.day
		FROM providers p
		LEFT JOIN provider_working_days pwd ON p.id = pwd.provider_id
		ORDER BY p.id, pwd.day
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := make([]*domain.Provider, 0)
	var current *domain.Provider
	for rows.Next() {
		p := &domain.Provider{}
		var breakStart, breakEnd sql.NullInt32
		var day sql.NullInt32

		dst := []any{
			&p.ID, &p.Username, &p.PasswordHash, &p.Name, &p.Email, &p.Phone, &p.Timezone,
			&p.Schedule.WorkStart, &p.Schedule.WorkEnd, &breakStart, &breakEnd, &p.CreatedAt, &p.Version,
			&day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if current == nil || current.ID != p.ID {
			// 第一次查到这个服务商
			p.Schedule.BreakStart = int32Ptr(breakStart)
			p.Schedule.BreakEnd = int32Ptr(breakEnd)
			p.Schedule.WorkingDays = make([]int32, 0, 7)
			providers = append(providers, p)
			current = p
		}

		if day.Valid {
			current.Schedule.WorkingDays = append(current.Schedule.WorkingDays, day.Int32)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return providers, nil
}

func (r *Repository) CreateProvider(p *domain.Provider) error {
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
		INSERT INTO providers (username, password_hash, name, email, phone, timezone, work_start, work_end, break_start, break_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`
	args := append([]any{p.Username, p.PasswordHash, p.Name, p.Email, p.Phone, p.Timezone}, scheduleArgs(p.Schedule)...)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
		return err
	}

	if err := replaceWorkingDays(ctx, tx, providerWorkingDays, p.ID, p.Schedule.WorkingDays); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateProvider 更新服务商信息和工作时间，版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateProvider(p *domain.Provider) error {
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
		UPDATE providers
		SET
			password_hash = $1,
			name = $2,
			email = $3,
			phone = $4,
			timezone = $5,
			work_start = $6,
			work_end = $7,
			break_start = $8,
			break_end = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`
	args := append([]any{p.PasswordHash, p.Name, p.Email, p.Phone, p.Timezone}, scheduleArgs(p.Schedule)...)
	args = append(args, p.ID, p.Version)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.Version); err != nil {
		return err
	}

	if err := replaceWorkingDays(ctx, tx, providerWorkingDays, p.ID, p.Schedule.WorkingDays); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckProviderEmailExists(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM providers WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
