package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

// ReportRepository stores tasks or bugs, depending on the table it is bound to.
type ReportRepository struct {
	db    *gorm.DB
	kind  domain.EntityType
	table string
}

func NewTaskRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db, kind: domain.EntityTask, table: tasksTable}
}

func NewBugRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db, kind: domain.EntityBug, table: bugsTable}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) (int64, error) {
	row := newReportRow(report)
	if err := r.db.WithContext(ctx).Table(r.table).Create(row).Error; err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.kind, err)
	}
	return row.ID, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	var row reportRow
	if err := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(r.kind, id)
		}
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	return row.toDomain(), nil
}

func (r *ReportRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Report, error) {
	q := r.db.WithContext(ctx).Table(r.table)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.OwnerID != 0 {
		q = q.Where("author_id = ?", filter.OwnerID)
	}

	var rows []reportRow
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}

	out := make([]*domain.Report, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, change ports.StatusChange) error {
	values := map[string]any{
		"status":     string(change.Status),
		"updated_at": change.At,
	}
	if change.Assignee != nil {
		values["assigned_admin_id"] = change.Assignee.UserID
		values["assigned_admin_username"] = change.Assignee.Username
	}

	res := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update %s status: %w", r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero for rows whose values did not change.
		_, err := r.FindByID(ctx, id)
		return err
	}
	return nil
}
