package subsidiaries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item Subsidiary) error
	Update(ctx context.Context, id string, set bson.M) (Subsidiary, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, publicOnly bool) ([]Subsidiary, error)
	GetBySlug(ctx context.Context, slug string) (Subsidiary, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item Subsidiary) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Subsidiary, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Subsidiary
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Subsidiary{}, err
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

func (r *MongoRepository) List(ctx context.Context, publicOnly bool) ([]Subsidiary, error) {
	query := bson.M{}
	if publicOnly {
		query["is_public"] = true
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "sort_order", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Subsidiary, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string) (Subsidiary, error) {
	var item Subsidiary
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&item); err != nil {
		return Subsidiary{}, err
	}
	return item, nil
}
