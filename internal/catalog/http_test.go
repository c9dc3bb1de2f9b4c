package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmexam/examprep/internal/auth"
	"github.com/pharmexam/examprep/internal/auth/jwt"
)

type stubCatalogStore struct {
	products     []Product
	productsErr  error
	subscription Subscription
	subErr       error
}

func (s *stubCatalogStore) GetProducts(_ context.Context) ([]Product, error) {
	return s.products, s.productsErr
}

func (s *stubCatalogStore) GetSubscription(_ context.Context, _ uuid.UUID) (Subscription, error) {
	return s.subscription, s.subErr
}

func TestGetProducts(t *testing.T) {
	store := &stubCatalogStore{products: []Product{
		{
			ID:   uuid.New(),
			Name: "PEBC Prep Monthly",
			Prices: []Price{
				{ID: uuid.New(), UnitAmount: 2900, Currency: "cad", Interval: "month"},
			},
		},
	}}
	h := NewHTTPHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetProducts(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "PEBC Prep Monthly", resp.Products[0].Name)
}

func TestGetProductsEmptyIsArray(t *testing.T) {
	h := NewHTTPHandler(&stubCatalogStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetProducts(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[]}`, rec.Body.String())
}

func TestGetProductsUpstreamFailure(t *testing.T) {
	h := NewHTTPHandler(&stubCatalogStore{productsErr: errors.New("db down")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetProducts(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func authedSubRequest(userID uuid.UUID) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/v1/subscription", nil)
	ctx := auth.ContextWithClaims(r.Context(), &jwt.Claims{UserID: userID})
	return r.WithContext(ctx)
}

func TestGetSubscription(t *testing.T) {
	userID := uuid.New()
	store := &stubCatalogStore{subscription: Subscription{
		ID:      uuid.New(),
		UserID:  userID,
		PriceID: uuid.New(),
		Status:  "active",
	}}
	h := NewHTTPHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetSubscription(rec, authedSubRequest(userID))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Subscription *Subscription `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Subscription)
	assert.Equal(t, "active", resp.Subscription.Status)
}

func TestGetSubscriptionNone(t *testing.T) {
	h := NewHTTPHandler(&stubCatalogStore{subErr: ErrNoSubscription}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetSubscription(rec, authedSubRequest(uuid.New()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subscription":null}`, rec.Body.String())
}

func TestGetSubscriptionRequiresAuth(t *testing.T) {
	h := NewHTTPHandler(&stubCatalogStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetSubscription(rec, httptest.NewRequest(http.MethodGet, "/v1/subscription", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
