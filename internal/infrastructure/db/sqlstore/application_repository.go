package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) (int64, error) {
	row := newApplicationRow(app)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, fmt.Errorf("insert application: %w", err)
	}
	return row.ID, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*domain.Application, error) {
	var row applicationRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(domain.EntityApplication, id)
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Application, error) {
	q := r.db.WithContext(ctx).Model(&applicationRow{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.OwnerID != 0 {
		q = q.Where("user_id = ?", filter.OwnerID)
	}

	var rows []applicationRow
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	out := make([]*domain.Application, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, change ports.StatusChange) error {
	res := r.db.WithContext(ctx).Model(&applicationRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(change.Status),
		"updated_at": change.At,
	})
	if res.Error != nil {
		return fmt.Errorf("update application status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	return nil
}

func (r *ApplicationRepository) LatestByUser(ctx context.Context, userID int64) (*domain.Application, error) {
	var row applicationRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest application: %w", err)
	}
	return row.toDomain(), nil
}
