package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/auth"
	httperrors "github.com/pharmexam/examprep/pkg/http/errors"
)

type catalogStore interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (Subscription, error)
}

// HTTPHandler serves the pricing page data.
type HTTPHandler struct {
	store  catalogStore
	logger zerolog.Logger
}

func NewHTTPHandler(store catalogStore, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{store: store, logger: logger}
}

// GetProducts handles GET /v1/products (public).
func (h *HTTPHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.GetProducts(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("product fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeCatalogFetchFailed, "Failed to load products")
		return
	}
	if products == nil {
		products = []Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"products": products})
}

// GetSubscription handles GET /v1/subscription (authenticated).
func (h *HTTPHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	sub, err := h.store.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoSubscription) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{"subscription": nil})
			return
		}
		h.logger.Error().Err(err).Msg("subscription fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeSubscriptionFetchFailed, "Failed to load subscription")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"subscription": sub})
}
