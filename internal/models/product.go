package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, the way the storefront and the admin panel send them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog.
type Product struct {
	ID          string          `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"nombre" bson:"nombre"`
	Description string          `json:"descripcion" bson:"descripcion"`
	Price       decimal.Decimal `json:"precio" bson:"precio" gorm:"type:numeric(12,2)"`
	Category    string          `json:"categoria" bson:"categoria" gorm:"index"`
	Photo       string          `json:"foto" bson:"foto"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// ProductInput carries the editable product fields sent by the admin panel.
type ProductInput struct {
	Name        string          `json:"nombre" validate:"required"`
	Description string          `json:"descripcion" validate:"required"`
	Price       decimal.Decimal `json:"precio" validate:"required,gt=0"`
	Category    string          `json:"categoria" validate:"required"`
	Photo       string          `json:"foto" validate:"required"`
}
