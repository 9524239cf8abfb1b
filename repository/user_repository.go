package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection)}
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.collection, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, r.collection, bson.M{"_id": id})
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"status":    user.Status,
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{collection: db.Collection(AdminsCollection)}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return findOne[models.Admin](ctx, r.collection, bson.M{"email": email})
}
