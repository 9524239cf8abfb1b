package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

type PromocodeService struct {
	promocodes repository.PromocodeRepo
	now        func() time.Time
	logger     *zap.Logger
}

func NewPromocodeService(promocodes repository.PromocodeRepo, logger *zap.Logger) *PromocodeService {
	if logger == nil {
		logger = zap.L()
	}
	return &PromocodeService{promocodes: promocodes, now: time.Now, logger: logger}
}

func (s *PromocodeService) CreatePromocode(ctx context.Context, req PromocodeRequest) (*models.Promocode, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	if req.Type == models.PromocodePercentage && req.Value > 100 {
		return nil, apperrors.BadRequest("value must be at most 100 for percentage codes")
	}
	now := s.now().UTC()
	if !req.ExpiresAt.After(now) {
		return nil, apperrors.BadRequest("expiresAt must be in the future")
	}

	p := &models.Promocode{
		ID:          uuid.New().String(),
		Key:         req.Key,
		Description: req.Description,
		MinOrder:    req.MinOrder,
		Type:        req.Type,
		Value:       req.Value,
		MaxUsers:    req.MaxUsers,
		ExpiresAt:   req.ExpiresAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.promocodes.Create(ctx, p); err != nil {
		return nil, storeError(err, "Promocode not found", "Promocode with this key already exists", "Failed to create promocode")
	}
	s.logger.Info("promocode created", zap.String("key", p.Key), zap.String("type", string(p.Type)))
	return p, nil
}

// ListPromocodes returns every code with IsExpired computed at call time.
func (s *PromocodeService) ListPromocodes(ctx context.Context) ([]models.Promocode, error) {
	codes, err := s.promocodes.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch promocodes", err)
	}
	now := s.now()
	for i := range codes {
		codes[i].IsExpired = codes[i].Expired(now)
	}
	return codes, nil
}

func (s *PromocodeService) DeletePromocode(ctx context.Context, id string) error {
	if err := s.promocodes.Delete(ctx, id); err != nil {
		return storeError(err, "Promocode not found", "", "Failed to delete promocode")
	}
	return nil
}

// Quote prices an order total against a code without redeeming it. The
// discount never exceeds the order total.
func (s *PromocodeService) Quote(ctx context.Context, req QuoteRequest) (*models.PromocodeQuote, error) {
	req.Key = strings.ToUpper(strings.TrimSpace(req.Key))
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	p, err := s.promocodes.FindByKey(ctx, req.Key)
	if err != nil {
		return nil, storeError(err, "Promocode not found", "", "Failed to load promocode")
	}
	if p.Expired(s.now()) {
		return nil, apperrors.BadRequest("Promocode has expired")
	}

	total := decimal.NewFromFloat(req.OrderTotal)
	minOrder := decimal.NewFromFloat(p.MinOrder)
	if total.LessThan(minOrder) {
		return nil, apperrors.BadRequest(fmt.Sprintf("Order total must be at least %s", minOrder.StringFixed(2)))
	}

	value := decimal.NewFromFloat(p.Value)
	var discount decimal.Decimal
	switch p.Type {
	case models.PromocodePercentage:
		discount = total.Mul(value).Div(decimal.NewFromInt(100))
	default:
		discount = value
	}
	discount = decimal.Min(discount, total).Round(2)

	return &models.PromocodeQuote{
		Key:        p.Key,
		Type:       p.Type,
		OrderTotal: total.StringFixed(2),
		Discount:   discount.StringFixed(2),
		Total:      total.Sub(discount).StringFixed(2),
	}, nil
}
