package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection(NotificationsCollection)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.collection.InsertOne(ctx, n)
	return translateMongo(err)
}

func (r *NotificationRepository) FindAll(ctx context.Context) ([]models.Notification, error) {
	return findAll[models.Notification](ctx, r.collection, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}

type PromocodeRepository struct {
	collection *mongo.Collection
}

func NewPromocodeRepository(db *mongo.Database) *PromocodeRepository {
	return &PromocodeRepository{collection: db.Collection(PromocodesCollection)}
}

func (r *PromocodeRepository) Create(ctx context.Context, p *models.Promocode) error {
	_, err := r.collection.InsertOne(ctx, p)
	return translateMongo(err)
}

func (r *PromocodeRepository) FindAll(ctx context.Context) ([]models.Promocode, error) {
	return findAll[models.Promocode](ctx, r.collection, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *PromocodeRepository) FindByKey(ctx context.Context, key string) (*models.Promocode, error) {
	return findOne[models.Promocode](ctx, r.collection, bson.M{"key": key})
}

func (r *PromocodeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id)
}
