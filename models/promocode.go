package models

import "time"

// PromocodeType represents the kind of discount a promo code grants.
type PromocodeType string

const (
	PromocodePercentage PromocodeType = "percentage"
	PromocodeFixAmount  PromocodeType = "fixAmount"
)

type Promocode struct {
	ID          string        `json:"_id" bson:"_id"`
	Key         string        `json:"key" bson:"key"`
	Description string        `json:"description" bson:"description"`
	MinOrder    float64       `json:"minOrder" bson:"minOrder"`
	Type        PromocodeType `json:"type" bson:"type"`
	Value       float64       `json:"value" bson:"value"`
	MaxUsers    int           `json:"maxUsers" bson:"maxUsers"` // 0 = unlimited
	Usage       int           `json:"usage" bson:"usage"`
	ExpiresAt   time.Time     `json:"expiresAt" bson:"expiresAt"`
	IsExpired   bool          `json:"isExpired" bson:"isExpired"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Expired reports whether the code can no longer be redeemed at now.
func (p *Promocode) Expired(now time.Time) bool {
	if !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt) {
		return true
	}
	return p.MaxUsers > 0 && p.Usage >= p.MaxUsers
}

// PromocodeQuote is the priced result of applying a code to an order total.
type PromocodeQuote struct {
	Key        string        `json:"key"`
	Type       PromocodeType `json:"type"`
	OrderTotal string        `json:"orderTotal"`
	Discount   string        `json:"discount"`
	Total      string        `json:"total"`
}
