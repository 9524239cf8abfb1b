package models

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type CartItem struct {
	ProductID string `json:"productId" bson:"productId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

type UserNotification struct {
	Notification string `json:"notification" bson:"notification"`
	IsViewed     bool   `json:"isViewed" bson:"isViewed"`
}

// User is a storefront customer as seen by the admin console.
type User struct {
	ID            string             `json:"_id" bson:"_id"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password,omitempty"`
	ProfileImage  string             `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Status        UserStatus         `json:"status" bson:"status"`
	Cart          []CartItem         `json:"cart" bson:"cart"`
	Favourited    []string           `json:"favourited" bson:"favourited"`
	Orders        []string           `json:"orders" bson:"orders"`
	TotalSpent    []float64          `json:"totalSpent" bson:"totalSpent"`
	Notifications []UserNotification `json:"notifications" bson:"notifications"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}
