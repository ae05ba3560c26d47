package casestudies

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item CaseStudy) error
	Update(ctx context.Context, id string, set bson.M) (CaseStudy, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListPublic(ctx context.Context, filter PublicListFilter) ([]CaseStudy, error)
	GetPublishedBySlug(ctx context.Context, slug string) (CaseStudy, error)
	ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]CaseStudy, error)
	CountAdmin(ctx context.Context, filter AdminListFilter) (int64, error)
	UpdateSubsidiaryRef(ctx context.Context, ref SubsidiaryRef) (int64, error)
	ClearSubsidiaryRef(ctx context.Context, subsidiaryID string) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

var listSort = bson.D{
	{Key: "featured", Value: -1},
	{Key: "sort_order", Value: 1},
	{Key: "created_at", Value: -1},
}

func (r *MongoRepository) Create(ctx context.Context, item CaseStudy) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (CaseStudy, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": set}
	if v, ok := set["subsidiary"]; ok && v == nil {
		delete(set, "subsidiary")
		update["$unset"] = bson.M{"subsidiary": ""}
	}

	var updated CaseStudy
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return CaseStudy{}, err
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

func (r *MongoRepository) ListPublic(ctx context.Context, filter PublicListFilter) ([]CaseStudy, error) {
	query := bson.M{"is_published": true}
	if filter.FeaturedOnly {
		query["featured"] = true
	}
	return r.find(ctx, query, options.Find().SetSort(listSort))
}

func (r *MongoRepository) GetPublishedBySlug(ctx context.Context, slug string) (CaseStudy, error) {
	var item CaseStudy
	if err := r.col.FindOne(ctx, bson.M{"slug": slug, "is_published": true}).Decode(&item); err != nil {
		return CaseStudy{}, err
	}
	return item, nil
}

func (r *MongoRepository) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]CaseStudy, error) {
	opts := options.Find().
		SetSort(listSort).
		SetLimit(limit).
		SetSkip(offset)
	return r.find(ctx, adminQuery(filter), opts)
}

func (r *MongoRepository) CountAdmin(ctx context.Context, filter AdminListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, adminQuery(filter))
}

// UpdateSubsidiaryRef rewrites the embedded subsidiary reference after a rename.
func (r *MongoRepository) UpdateSubsidiaryRef(ctx context.Context, ref SubsidiaryRef) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"subsidiary.id": ref.ID},
		bson.M{"$set": bson.M{"subsidiary": ref}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ClearSubsidiaryRef detaches a deleted subsidiary from every record that embeds it.
func (r *MongoRepository) ClearSubsidiaryRef(ctx context.Context, subsidiaryID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"subsidiary.id": subsidiaryID},
		bson.M{"$unset": bson.M{"subsidiary": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]CaseStudy, error) {
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]CaseStudy, 0)
	for cursor.Next(ctx) {
		var item CaseStudy
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func adminQuery(filter AdminListFilter) bson.M {
	query := bson.M{}
	if filter.SubsidiarySlug != "" {
		query["subsidiary.slug"] = filter.SubsidiarySlug
	}
	if filter.Published != nil {
		query["is_published"] = *filter.Published
	}
	return query
}
