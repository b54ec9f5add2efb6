package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

const (
	tasksCollection = "tasks"
	bugsCollection  = "bugs"
)

// newestFirst is the listing order shared by every entity collection.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// ReportRepository stores tasks or bugs, depending on the collection it is bound to.
type ReportRepository struct {
	col  *mongo.Collection
	ids  sequence
	kind domain.EntityType
}

func NewTaskRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(tasksCollection), ids: newSequence(db, tasksCollection), kind: domain.EntityTask}
}

func NewBugRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(bugsCollection), ids: newSequence(db, bugsCollection), kind: domain.EntityBug}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return 0, err
	}
	doc := *report
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.kind, err)
	}
	return id, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var report domain.Report
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&report); err != nil {
		if isNoDocuments(err) {
			return nil, &domain.NotFoundError{Entity: r.kind, ID: id}
		}
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.OwnerID != 0 {
		query["author_id"] = filter.OwnerID
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	reports := []*domain.Report{}
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.kind, err)
	}
	return reports, nil
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, change ports.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": change.Status, "updated_at": change.At}
	if change.Assignee != nil {
		set["assigned_admin_id"] = change.Assignee.UserID
		set["assigned_admin_username"] = change.Assignee.Username
	}

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s status: %w", r.kind, err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Entity: r.kind, ID: id}
	}
	return nil
}
