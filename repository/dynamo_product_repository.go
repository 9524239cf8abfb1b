package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

// DynamoProductRepository is a DynamoDB-backed ProductRepo. Category
// references are stored as a String Set.
type DynamoProductRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductRepository(client DynamoAPI, table string) *DynamoProductRepository {
	return &DynamoProductRepository{client: client, table: table}
}

type ddbProduct struct {
	ID          string   `dynamodbav:"id"`
	Name        string   `dynamodbav:"name"`
	Description string   `dynamodbav:"description"`
	Price       float64  `dynamodbav:"price"`
	OldPrice    *float64 `dynamodbav:"old_price,omitempty"`
	Slug        string   `dynamodbav:"slug"`
	Images      []string `dynamodbav:"images"`
	Categories  []string `dynamodbav:"categories,stringset,omitempty"`
	Benefits    []string `dynamodbav:"benefits"`
	IsOriginal  bool     `dynamodbav:"is_original"`
	CreatedAt   string   `dynamodbav:"created_at"`
	UpdatedAt   string   `dynamodbav:"updated_at"`
}

func productToModel(dp *ddbProduct) *models.Product {
	p := &models.Product{
		ID:          dp.ID,
		Name:        dp.Name,
		Description: dp.Description,
		Price:       dp.Price,
		OldPrice:    dp.OldPrice,
		Slug:        dp.Slug,
		Images:      dp.Images,
		Categories:  sortedSet(dp.Categories),
		Benefits:    dp.Benefits,
		IsOriginal:  dp.IsOriginal,
		CreatedAt:   parseTime(dp.CreatedAt),
		UpdatedAt:   parseTime(dp.UpdatedAt),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Benefits == nil {
		p.Benefits = []string{}
	}
	return p
}

func productToDDB(p *models.Product) *ddbProduct {
	return &ddbProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		Slug:        p.Slug,
		Images:      p.Images,
		Categories:  p.Categories,
		Benefits:    p.Benefits,
		IsOriginal:  p.IsOriginal,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func (d *DynamoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	dp, err := getItem[ddbProduct](ctx, d.client, d.table, id)
	if err != nil {
		return nil, err
	}
	return productToModel(dp), nil
}

func (d *DynamoProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(d.table)}

	var conds []string
	values := map[string]types.AttributeValue{}
	if filter.CategoryID != "" {
		conds = append(conds, "contains(categories, :cid)")
		values[":cid"] = &types.AttributeValueMemberS{Value: filter.CategoryID}
	}
	if filter.Slug != "" {
		conds = append(conds, "slug = :slug")
		values[":slug"] = &types.AttributeValueMemberS{Value: filter.Slug}
	}
	if len(conds) > 0 {
		input.FilterExpression = aws.String(strings.Join(conds, " AND "))
		input.ExpressionAttributeValues = values
	}

	items, err := scanAll[ddbProduct](ctx, d.client, input)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(items))
	for i := range items {
		out = append(out, *productToModel(&items[i]))
	}
	sortNewestFirst(out, func(p models.Product) time.Time { return p.CreatedAt })
	return out, nil
}

func (d *DynamoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := d.ensureSlugFree(ctx, product); err != nil {
		return err
	}
	return d.put(ctx, product, "attribute_not_exists(id)", ErrDuplicate)
}

func (d *DynamoProductRepository) Replace(ctx context.Context, product *models.Product) error {
	if err := d.ensureSlugFree(ctx, product); err != nil {
		return err
	}
	return d.put(ctx, product, "attribute_exists(id)", ErrNotFound)
}

func (d *DynamoProductRepository) put(ctx context.Context, product *models.Product, condition string, onConditionFailed error) error {
	item, err := attributevalue.MarshalMap(productToDDB(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	if isConditionFailed(err) {
		return onConditionFailed
	}
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoProductRepository) Delete(ctx context.Context, id string) error {
	return deleteItem(ctx, d.client, d.table, id)
}

// PullCategory finds referencing products with a scan and deletes the ID
// from each product's set.
func (d *DynamoProductRepository) PullCategory(ctx context.Context, categoryID string) (int64, error) {
	refs, err := scanAll[ddbProduct](ctx, d.client, &dynamodb.ScanInput{
		TableName:                 aws.String(d.table),
		FilterExpression:          aws.String("contains(categories, :cid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":cid": &types.AttributeValueMemberS{Value: categoryID}},
		ProjectionExpression:      aws.String("id"),
	})
	if err != nil {
		return 0, err
	}

	var modified int64
	for _, ref := range refs {
		_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(d.table),
			Key:                 idKey(ref.ID),
			UpdateExpression:    aws.String("DELETE categories :c SET updated_at = :now"),
			ConditionExpression: aws.String("attribute_exists(id)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":c":   &types.AttributeValueMemberSS{Value: []string{categoryID}},
				":now": &types.AttributeValueMemberS{Value: formatTime(time.Now())},
			},
		})
		if isConditionFailed(err) {
			continue
		}
		if err != nil {
			return modified, fmt.Errorf("pull category %s from product %s: %w", categoryID, ref.ID, err)
		}
		modified++
	}
	return modified, nil
}

func (d *DynamoProductRepository) ensureSlugFree(ctx context.Context, product *models.Product) error {
	items, err := scanAll[ddbProduct](ctx, d.client, &dynamodb.ScanInput{
		TableName:        aws.String(d.table),
		FilterExpression: aws.String("slug = :slug AND id <> :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slug": &types.AttributeValueMemberS{Value: product.Slug},
			":id":   &types.AttributeValueMemberS{Value: product.ID},
		},
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return fmt.Errorf("%w: product slug %q", ErrDuplicate, product.Slug)
	}
	return nil
}
