package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

// DynamoCategoryRepository is a DynamoDB-backed CategoryRepo. Back-references
// are a String Set, so ADD and DELETE give add-if-absent and remove-if-present
// without a read.
type DynamoCategoryRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoCategoryRepository(client DynamoAPI, table string) *DynamoCategoryRepository {
	return &DynamoCategoryRepository{client: client, table: table}
}

type ddbCategory struct {
	ID          string   `dynamodbav:"id"`
	Name        string   `dynamodbav:"name"`
	Slug        string   `dynamodbav:"slug"`
	Icon        string   `dynamodbav:"icon"`
	Description string   `dynamodbav:"description"`
	Status      string   `dynamodbav:"status"`
	Products    []string `dynamodbav:"products,stringset,omitempty"`
	CreatedAt   string   `dynamodbav:"created_at"`
	UpdatedAt   string   `dynamodbav:"updated_at"`
}

func categoryToModel(dc *ddbCategory) *models.Category {
	return &models.Category{
		ID:          dc.ID,
		Name:        dc.Name,
		Slug:        dc.Slug,
		Icon:        dc.Icon,
		Description: dc.Description,
		Status:      models.CategoryStatus(dc.Status),
		Products:    sortedSet(dc.Products),
		CreatedAt:   parseTime(dc.CreatedAt),
		UpdatedAt:   parseTime(dc.UpdatedAt),
	}
}

func categoryToDDB(c *models.Category) *ddbCategory {
	return &ddbCategory{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Icon:        c.Icon,
		Description: c.Description,
		Status:      string(c.Status),
		Products:    c.Products,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func (d *DynamoCategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	dc, err := getItem[ddbCategory](ctx, d.client, d.table, id)
	if err != nil {
		return nil, err
	}
	return categoryToModel(dc), nil
}

// FindBySlug scans; a GSI on slug should replace this for large tables.
func (d *DynamoCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	found, err := d.scanWhere(ctx, "slug = :v", slug)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (d *DynamoCategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	out := []models.Category{}
	// BatchGetItem accepts at most 100 keys
	for start := 0; start < len(ids); start += 100 {
		end := min(start+100, len(ids))

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, idKey(id))
		}
		request := map[string]types.KeysAndAttributes{d.table: {Keys: keys}}

		for len(request) > 0 {
			res, err := d.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("dynamodb BatchGetItem failed: %w", err)
			}
			var items []ddbCategory
			if err := attributevalue.UnmarshalListOfMaps(res.Responses[d.table], &items); err != nil {
				return nil, fmt.Errorf("unmarshal batch: %w", err)
			}
			for i := range items {
				out = append(out, *categoryToModel(&items[i]))
			}
			request = res.UnprocessedKeys
		}
	}
	return out, nil
}

func (d *DynamoCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	items, err := scanAll[ddbCategory](ctx, d.client, &dynamodb.ScanInput{TableName: aws.String(d.table)})
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(items))
	for i := range items {
		out = append(out, *categoryToModel(&items[i]))
	}
	sortNewestFirst(out, func(c models.Category) time.Time { return c.CreatedAt })
	return out, nil
}

func (d *DynamoCategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(d.table),
		Key:                  idKey(id),
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return false, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	return len(out.Item) > 0, nil
}

// Create enforces name and slug uniqueness with a scan before a conditional
// put. Two racing creates can still both pass the scan.
func (d *DynamoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := d.ensureUnique(ctx, category); err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(categoryToDDB(category))
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%w: category id %s", ErrDuplicate, category.ID)
	}
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := d.ensureUnique(ctx, category); err != nil {
		return err
	}
	values, err := attributevalue.MarshalMap(map[string]string{
		":name":        category.Name,
		":slug":        category.Slug,
		":icon":        category.Icon,
		":description": category.Description,
		":status":      string(category.Status),
		":updated":     formatTime(category.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("marshal update values: %w", err)
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.table),
		Key:                       idKey(category.ID),
		UpdateExpression:          aws.String("SET #n = :name, slug = :slug, icon = :icon, description = :description, #s = :status, updated_at = :updated"),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  map[string]string{"#n": "name", "#s": "status"},
		ExpressionAttributeValues: values,
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("dynamodb UpdateItem failed: %w", err)
	}
	return nil
}

func (d *DynamoCategoryRepository) Delete(ctx context.Context, id string) error {
	return deleteItem(ctx, d.client, d.table, id)
}

func (d *DynamoCategoryRepository) AddProduct(ctx context.Context, categoryID, productID string) error {
	return d.updateProducts(ctx, "ADD", categoryID, productID)
}

func (d *DynamoCategoryRepository) RemoveProduct(ctx context.Context, categoryID, productID string) error {
	return d.updateProducts(ctx, "DELETE", categoryID, productID)
}

// updateProducts applies a set action to the products attribute. The
// attribute_exists guard stops ADD from materialising a deleted category.
func (d *DynamoCategoryRepository) updateProducts(ctx context.Context, action, categoryID, productID string) error {
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.table),
		Key:                 idKey(categoryID),
		UpdateExpression:    aws.String(action + " products :p SET updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":   &types.AttributeValueMemberSS{Value: []string{productID}},
			":now": &types.AttributeValueMemberS{Value: formatTime(time.Now())},
		},
	})
	if isConditionFailed(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dynamodb UpdateItem (%s products) failed: %w", action, err)
	}
	return nil
}

func (d *DynamoCategoryRepository) scanWhere(ctx context.Context, filter, value string) ([]models.Category, error) {
	items, err := scanAll[ddbCategory](ctx, d.client, &dynamodb.ScanInput{
		TableName:                 aws.String(d.table),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(items))
	for i := range items {
		out = append(out, *categoryToModel(&items[i]))
	}
	return out, nil
}

func (d *DynamoCategoryRepository) ensureUnique(ctx context.Context, category *models.Category) error {
	items, err := scanAll[ddbCategory](ctx, d.client, &dynamodb.ScanInput{
		TableName:                aws.String(d.table),
		FilterExpression:         aws.String("(#n = :name OR slug = :slug) AND id <> :id"),
		ExpressionAttributeNames: map[string]string{"#n": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: category.Name},
			":slug": &types.AttributeValueMemberS{Value: category.Slug},
			":id":   &types.AttributeValueMemberS{Value: category.ID},
		},
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return fmt.Errorf("%w: category name or slug %q", ErrDuplicate, category.Slug)
	}
	return nil
}
