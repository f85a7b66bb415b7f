package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

func (r *Repository) GetServiceByID(id int64) (*domain.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		SELECT provider_id, name, description, duration_minutes, price, is_active, created_at, version
		FROM services WHERE id = $1
	`

	svc := &domain.Service{
		ID: id,
	}

	dst := []any{&svc.ProviderID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price, &svc.IsActive, &svc.CreatedAt, &svc.Version}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return svc, nil
}

// GetServicesByProviderID onlyActive 为 true 时只返回启用的服务
func (r *Repository) GetServicesByProviderID(providerID int64, onlyActive bool) ([]*domain.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		SELECT id, name, description, duration_minutes, price, is_active, created_at, version
		FROM services
		WHERE provider_id = $1 AND (is_active OR NOT $2)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, providerID, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		svc := &domain.Service{
			ProviderID: providerID,
		}
		dst := []any{&svc.ID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price, &svc.IsActive, &svc.CreatedAt, &svc.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return services, nil
}

func (r *Repository) CreateService(svc *domain.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		INSERT INTO services (provider_id, name, description, duration_minutes, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{svc.ProviderID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.IsActive}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&svc.ID, &svc.CreatedAt, &svc.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateService(svc *domain.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		UPDATE services
		SET
			name = $1,
			description = $2,
			duration_minutes = $3,
			price = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.IsActive, svc.ID, svc.Version}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&svc.Version); err != nil {
		return err
	}

	return nil
}

// DeleteService 已经被预约过的服务无法删除（外键约束 bookings_service_id_fkey），只能停用
func (r *Repository) DeleteService(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout())
	defer cancel()

	query := `
		DELETE FROM services WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
