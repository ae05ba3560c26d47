package pages

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, page Page) error
	Update(ctx context.Context, id string, set bson.M) (Page, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetPublished(ctx context.Context, slug, locale string) (Page, error)
	List(ctx context.Context, locale string) ([]Page, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, page Page) error {
	_, err := r.col.InsertOne(ctx, page)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Page, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Page
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Page{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) GetPublished(ctx context.Context, slug, locale string) (Page, error) {
	var page Page
	err := r.col.FindOne(ctx, bson.M{"slug": slug, "locale": locale, "is_published": true}).Decode(&page)
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

func (r *MongoRepository) List(ctx context.Context, locale string) ([]Page, error) {
	query := bson.M{}
	if locale != "" {
		query["locale"] = locale
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "slug", Value: 1}, {Key: "locale", Value: 1}}).
		SetProjection(bson.M{"sections": 0})

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Page, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
