package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

// Mongo is the process-lifetime connection handle. It is created once in
// main and handed to every repository.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ConnectMongo connects and pings within a 10s budget.
func ConnectMongo(ctx context.Context, mongoURL, dbName string) (*Mongo, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	zap.L().Info("connected to MongoDB", zap.String("db", dbName))
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// Close disconnects from MongoDB
func (m *Mongo) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// IndexSpecs are the unique constraints the services rely on to surface
// duplicates as conflicts.
func IndexSpecs() map[string][]mongo.IndexModel {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	return map[string][]mongo.IndexModel{
		repository.CategoriesCollection: {unique("name"), unique("slug")},
		repository.ProductsCollection: {
			unique("slug"),
			{Keys: bson.D{{Key: "categories", Value: 1}}, Options: options.Index().SetName("categories_1")},
		},
		repository.UsersCollection:      {unique("email")},
		repository.AdminsCollection:     {unique("email")},
		repository.PromocodesCollection: {unique("key")},
	}
}

// EnsureIndexes creates every index from IndexSpecs; existing ones are kept.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	for coll, specs := range IndexSpecs() {
		if _, err := m.DB.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
