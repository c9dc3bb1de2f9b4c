package catalog

import "github.com/google/uuid"

// Product is one study plan shown on the pricing page.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Prices      []Price   `json:"prices"`
}

// Price is one billing option for a product.
type Price struct {
	ID         uuid.UUID `json:"id"`
	UnitAmount int64     `json:"unit_amount"` // smallest currency unit
	Currency   string    `json:"currency"`
	Interval   string    `json:"interval"` // "month" or "year"
}

// Subscription links a user to the price they pay for.
type Subscription struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	PriceID uuid.UUID `json:"price_id"`
	Status  string    `json:"status"` // "active", "trialing", "canceled"
}
