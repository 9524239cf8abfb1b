package models

import "time"

// Admin is an operator allowed to use the console. Identity is the email
// carried by the session token.
type Admin struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	ProfileImage string    `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
