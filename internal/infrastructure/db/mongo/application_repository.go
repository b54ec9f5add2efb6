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

const applicationsCollection = "applications"

type ApplicationRepository struct {
	col *mongo.Collection
	ids sequence
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{
		col: db.Collection(applicationsCollection),
		ids: newSequence(db, applicationsCollection),
	}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return 0, err
	}
	doc := *app
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		return 0, fmt.Errorf("insert application: %w", err)
	}
	return id, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var app domain.Application
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		if isNoDocuments(err) {
			return nil, &domain.NotFoundError{Entity: domain.EntityApplication, ID: id}
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.OwnerID != 0 {
		query["user_id"] = filter.OwnerID
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps := []*domain.Application{}
	if err := cur.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	return apps, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, change ports.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": change.Status, "updated_at": change.At}})
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Entity: domain.EntityApplication, ID: id}
	}
	return nil
}

func (r *ApplicationRepository) LatestByUser(ctx context.Context, userID int64) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var app domain.Application
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}, options.FindOne().SetSort(newestFirst)).Decode(&app)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest application: %w", err)
	}
	return &app, nil
}
