package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

// ProductRepository is the MongoDB ProductRepo.
type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(ProductsCollection)}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return findOne[models.Product](ctx, r.collection, bson.M{"_id": id})
}

func (r *ProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.collection, productFilter(filter), options.Find().SetSort(newestFirst))
}

func productFilter(f models.ProductFilter) bson.M {
	q := bson.M{}
	if f.CategoryID != "" {
		q["categories"] = f.CategoryID
	}
	if f.Slug != "" {
		q["slug"] = f.Slug
	}
	return q
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return translateMongo(err)
}

func (r *ProductRepository) Replace(ctx context.Context, product *models.Product) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

func (r *ProductRepository) PullCategory(ctx context.Context, categoryID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"categories": categoryID}, bson.M{
		"$pull": bson.M{"categories": categoryID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
