package models

import "time"

// Profile holds the contact details of an identity-provider user.
type Profile struct {
	ID         string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Subject    string    `json:"sub" bson:"sub" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email" bson:"email"`
	Address    string    `json:"address" bson:"address"`
	PostalCode string    `json:"postalCode" bson:"postalCode"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProfileInput is the body accepted when a user saves their profile.
type ProfileInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}

// AuthenticatedIdentity is a caller whose token has been verified.
type AuthenticatedIdentity struct {
	Subject string
	Email   string
}
