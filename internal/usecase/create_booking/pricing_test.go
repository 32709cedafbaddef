package create_booking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
)

func TestParseProducts(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.LineItem
		wantErr error
	}{
		{name: "absent", raw: ``},
		{name: "null", raw: `null`},
		{name: "empty string", raw: `""`},
		{name: "empty array", raw: `[]`, want: []domain.LineItem{}},
		{
			name: "array with default quantity",
			raw:  `[{"id": 7, "price": 50000}]`,
			want: []domain.LineItem{{ProductID: 7, Price: 50000, Quantity: 1}},
		},
		{
			name: "serialized string",
			raw:  `"[{\"id\":7,\"price\":50000,\"quantity\":2},{\"id\":8,\"price\":15000.0}]"`,
			want: []domain.LineItem{
				{ProductID: 7, Price: 50000, Quantity: 2, Position: 0},
				{ProductID: 8, Price: 15000, Quantity: 1, Position: 1},
			},
		},
		{name: "object instead of array", raw: `{"id": 7, "price": 1}`, wantErr: ErrInvalidProductPayload},
		{name: "garbage string", raw: `"abc"`, wantErr: ErrInvalidProductPayload},
		{name: "scalar item", raw: `[7]`, wantErr: ErrInvalidProductPayload},
		{name: "missing id", raw: `[{"price": 1}]`, wantErr: ErrProductMissingFields},
		{name: "missing price", raw: `[{"id": 7}]`, wantErr: ErrProductMissingFields},
		{name: "second item missing price", raw: `[{"id": 7, "price": 1}, {"id": 8}]`, wantErr: ErrProductMissingFields},
		{name: "zero id", raw: `[{"id": 0, "price": 1}]`, wantErr: ErrProductMissingFields},
		{name: "non-numeric id", raw: `[{"id": "seven", "price": 1}]`, wantErr: ErrInvalidProductPayload},
		{name: "zero price", raw: `[{"id": 7, "price": 0}]`, wantErr: ErrProductMissingFields},
		{name: "zero price as float", raw: `[{"id": 7, "price": 0.0}]`, wantErr: ErrProductMissingFields},
		{name: "negative price", raw: `[{"id": 7, "price": -1}]`, wantErr: ErrInvalidProductPayload},
		{name: "fractional price", raw: `[{"id": 7, "price": 10.5}]`, wantErr: ErrInvalidProductPayload},
		{name: "zero quantity", raw: `[{"id": 7, "price": 1, "quantity": 0}]`, wantErr: ErrInvalidProductPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProducts(json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePricing(t *testing.T) {
	substitutable := domain.Service{ID: 2, BasePrice: 80000, AllowsSubstitution: true}
	plain := domain.Service{ID: 1, BasePrice: 150000}
	catalog := []domain.Product{
		{ID: 7, ServiceID: 2, Price: 52000},
		{ID: 9, ServiceID: 1, Price: 3000},
	}

	t.Run("substitution with products zeroes service price", func(t *testing.T) {
		price, items, err := ResolvePricing(substitutable, []domain.LineItem{{ProductID: 7, Price: 50000, Quantity: 2}}, catalog, true)
		require.NoError(t, err)
		assert.Equal(t, int64(0), price)
		assert.Equal(t, []domain.LineItem{{ProductID: 7, Price: 50000, Quantity: 2}}, items)
	})

	t.Run("substitution without products keeps base price", func(t *testing.T) {
		price, items, err := ResolvePricing(substitutable, nil, catalog, true)
		require.NoError(t, err)
		assert.Equal(t, int64(80000), price)
		assert.Empty(t, items)
	})

	t.Run("plain service keeps base price with products", func(t *testing.T) {
		price, items, err := ResolvePricing(plain, []domain.LineItem{{ProductID: 9, Price: 2500, Quantity: 4}}, catalog, true)
		require.NoError(t, err)
		assert.Equal(t, int64(150000), price)
		assert.Equal(t, int64(2500), items[0].Price)
	})

	t.Run("catalog price when client prices are not trusted", func(t *testing.T) {
		_, items, err := ResolvePricing(substitutable, []domain.LineItem{{ProductID: 7, Price: 1, Quantity: 1}}, catalog, false)
		require.NoError(t, err)
		assert.Equal(t, int64(52000), items[0].Price)
	})

	t.Run("product of another service", func(t *testing.T) {
		_, _, err := ResolvePricing(substitutable, []domain.LineItem{{ProductID: 9, Price: 3000, Quantity: 1}}, catalog, true)
		assert.ErrorIs(t, err, ErrProductNotInService)
	})
}
