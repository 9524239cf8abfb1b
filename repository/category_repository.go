package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

// CategoryRepository is the MongoDB CategoryRepo.
type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{collection: db.Collection(CategoriesCollection)}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	return findOne[models.Category](ctx, r.collection, bson.M{"_id": id})
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return findOne[models.Category](ctx, r.collection, bson.M{"slug": slug})
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	return findAll[models.Category](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, r.collection, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	_, err := r.collection.InsertOne(ctx, category)
	return translateMongo(err)
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, bson.M{"$set": bson.M{
		"name":        category.Name,
		"slug":        category.Slug,
		"icon":        category.Icon,
		"description": category.Description,
		"status":      category.Status,
		"updatedAt":   category.UpdatedAt,
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

// AddProduct uses $addToSet so repeating it never duplicates the ID.
func (r *CategoryRepository) AddProduct(ctx context.Context, categoryID, productID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": categoryID}, bson.M{
		"$addToSet": bson.M{"products": productID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *CategoryRepository) RemoveProduct(ctx context.Context, categoryID, productID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": categoryID}, bson.M{
		"$pull": bson.M{"products": productID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}
