package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the Mongo repositories and the index setup.
const (
	CategoriesCollection    = "categories"
	ProductsCollection      = "products"
	UsersCollection         = "users"
	AdminsCollection        = "admins"
	NotificationsCollection = "notifications"
	PromocodesCollection    = "promocodes"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// translateMongo maps driver errors onto the repository sentinels.
func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return &doc, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
