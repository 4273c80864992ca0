package models

// CheckoutRequest is the form posted by the checkout page.
// Products is the cart encoded as comma-joined product ids.
type CheckoutRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Name     string `json:"name" form:"name" validate:"required"`
	Address  string `json:"address" form:"address" validate:"required"`
	City     string `json:"city" form:"city" validate:"required"`
	Products string `json:"products" form:"products"`
}

// OrderEvent is published once an order has been stored.
type OrderEvent struct {
	OrderID  string     `json:"orderID"`
	Email    string     `json:"email"`
	Total    string     `json:"total"`
	Currency string     `json:"currency"`
	Items    []LineItem `json:"items"`
}
