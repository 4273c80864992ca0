package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a snapshot of a product taken at checkout time.
// ProductID is kept for reference only; later catalog edits never touch it.
type LineItem struct {
	ProductID string          `json:"productId" bson:"productId"`
	Name      string          `json:"name" bson:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice" bson:"unitPrice"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	Currency  string          `json:"currency" bson:"currency"`
}

// Subtotal returns quantity times unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order represents a customer order created by a checkout submission.
type Order struct {
	ID        string     `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Items     []LineItem `json:"products" bson:"products" gorm:"serializer:json"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email" bson:"email"`
	Address   string     `json:"address" bson:"address"`
	City      string     `json:"city" bson:"city"`
	Paid      bool       `json:"paid" bson:"paid"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt" gorm:"index"`
}

// Total sums the subtotals of every line item.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
