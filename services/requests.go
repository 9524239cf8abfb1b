package services

import (
	"strings"
	"time"

	"github.com/ixtiyorSaitov/e-commerce-admin/models"
)

type CategoryRequest struct {
	Name        string                `json:"name" validate:"required"`
	Icon        string                `json:"icon" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Status      models.CategoryStatus `json:"status" validate:"required,oneof=active inactive"`
}

func (r *CategoryRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Icon = strings.TrimSpace(r.Icon)
	r.Description = strings.TrimSpace(r.Description)
	r.Status = models.CategoryStatus(strings.TrimSpace(string(r.Status)))
}

// ProductRequest carries the full editable state of a product. Price and
// OldPrice are pointers so a missing value is told apart from zero.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	OldPrice    *float64 `json:"oldPrice" validate:"omitempty,gte=0"`
	Categories  []string `json:"categories" validate:"required,min=1,dive,required"`
	Images      []string `json:"images" validate:"required,min=1,dive,required"`
	Benefits    []string `json:"benefits" validate:"required,min=2,max=4,dive,required"`
	IsOriginal  bool     `json:"isOriginal"`
}

func (r *ProductRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Categories = models.UniqueIDs(r.Categories)
	r.Images = trimAll(r.Images)
	r.Benefits = trimAll(r.Benefits)
}

// ProductQuery filters the product listing. CategorySlug and Slug are exact
// matches; Populate expands category IDs into category summaries.
type ProductQuery struct {
	CategorySlug string
	Slug         string
	Populate     bool
}

type UserUpdateRequest struct {
	Name   string            `json:"name" validate:"required"`
	Email  string            `json:"email" validate:"required,email"`
	Status models.UserStatus `json:"status" validate:"required,oneof=active inactive"`
}

func (r *UserUpdateRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Status = models.UserStatus(strings.TrimSpace(string(r.Status)))
}

type NotificationRequest struct {
	Title      string                  `json:"title" validate:"required"`
	Message    string                  `json:"message" validate:"required"`
	Type       models.NotificationType `json:"type" validate:"required,oneof=info warning success error"`
	Recipients models.Recipients       `json:"recipients" validate:"required,oneof=all active inactive"`
}

func (r *NotificationRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
}

type PromocodeRequest struct {
	Key         string               `json:"key" validate:"required,min=3,max=32"`
	Description string               `json:"description"`
	MinOrder    float64              `json:"minOrder" validate:"gte=0"`
	Type        models.PromocodeType `json:"type" validate:"required,oneof=percentage fixAmount"`
	Value       float64              `json:"value" validate:"gt=0"`
	MaxUsers    int                  `json:"maxUsers" validate:"gte=0"`
	ExpiresAt   time.Time            `json:"expiresAt" validate:"required"`
}

func (r *PromocodeRequest) normalize() {
	r.Key = strings.ToUpper(strings.TrimSpace(r.Key))
	r.Description = strings.TrimSpace(r.Description)
}

type QuoteRequest struct {
	Key        string  `json:"key" validate:"required"`
	OrderTotal float64 `json:"orderTotal" validate:"gt=0"`
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
