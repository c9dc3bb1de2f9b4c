package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSubscription means the user has no active subscription.
var ErrNoSubscription = errors.New("no active subscription")

// Store reads the product catalog and subscriptions from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetProducts returns active products with their prices, ordered for display.
func (s *Store) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.product_id, p.name, p.description,
		        pr.price_id, pr.unit_amount, pr.currency, pr.billing_interval
		 FROM products p
		 JOIN prices pr ON pr.product_id = p.product_id AND pr.active
		 WHERE p.active
		 ORDER BY p.display_order, pr.unit_amount`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			productID   uuid.UUID
			name        string
			description string
			price       Price
		)
		if err := rows.Scan(&productID, &name, &description,
			&price.ID, &price.UnitAmount, &price.Currency, &price.Interval); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		i, ok := index[productID]
		if !ok {
			products = append(products, Product{ID: productID, Name: name, Description: description})
			i = len(products) - 1
			index[productID] = i
		}
		products[i].Prices = append(products[i].Prices, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetSubscription returns the user's current subscription, if any.
func (s *Store) GetSubscription(ctx context.Context, userID uuid.UUID) (Subscription, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT subscription_id, user_id, price_id, status
		 FROM subscriptions
		 WHERE user_id = $1 AND status IN ('active', 'trialing')
		 ORDER BY created_at DESC
		 LIMIT 1`, userID)

	var sub Subscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PriceID, &sub.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, ErrNoSubscription
		}
		return Subscription{}, fmt.Errorf("scan subscription: %w", err)
	}
	return sub, nil
}
