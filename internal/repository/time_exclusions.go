package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

const timeExclusionColumns = `id, provider_id, name, start_time, end_time, weekday, is_active, created_at, version`

func scanTimeExclusion(row interface{ Scan(dest ...any) error }) (*domain.TimeExclusion, error) {
	ex := &domain.TimeExclusion{}
	var weekday sql.NullInt32

	dst := []any{&ex.ID, &ex.ProviderID, &ex.Name, &ex.StartTime, &ex.EndTime, &weekday, &ex.IsActive, &ex.CreatedAt, &ex.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	ex.Weekday = int32Ptr(weekday)

	return ex, nil
}

func (r *Repository) GetTimeExclusionByID(id int64) (*domain.TimeExclusion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `SELECT ` + timeExclusionColumns + ` FROM time_exclusions WHERE id = $1`

	return scanTimeExclusion(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) getTimeExclusions(providerID int64, onlyActive bool) ([]*domain.TimeExclusion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		SELECT ` + timeExclusionColumns + `
		FROM time_exclusions
		WHERE provider_id = $1 AND (is_active OR NOT $2)
		ORDER BY start_time, end_time, id
	`

	rows, err := r.db.QueryContext(ctx, query, providerID, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exclusions := make([]*domain.TimeExclusion, 0)
	for rows.Next() {
		ex, err := scanTimeExclusion(rows)
		if err != nil {
			return nil, err
		}
		exclusions = append(exclusions, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exclusions, nil
}

func (r *Repository) GetTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error) {
	return r.getTimeExclusions(providerID, false)
}

func (r *Repository) GetActiveTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error) {
	return r.getTimeExclusions(providerID, true)
}

func (r *Repository) CreateTimeExclusion(ex *domain.TimeExclusion) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		INSERT INTO time_exclusions (provider_id, name, start_time, end_time, weekday, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{ex.ProviderID, ex.Name, ex.StartTime, ex.EndTime, nullableInt32(ex.Weekday), ex.IsActive}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ex.ID, &ex.CreatedAt, &ex.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateTimeExclusion(ex *domain.TimeExclusion) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		UPDATE time_exclusions
		SET
			name = $1,
			start_time = $2,
			end_time = $3,
			weekday = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{ex.Name, ex.StartTime, ex.EndTime, nullableInt32(ex.Weekday), ex.IsActive, ex.ID, ex.Version}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ex.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTimeExclusion(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		DELETE FROM time_exclusions WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
