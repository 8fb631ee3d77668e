package models_test

import (
	"testing"

	appErrors "github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLine(t *testing.T) {
	line := models.CartLine{
		ProductID: 42,
		Name:      "latte",
		UnitPrice: decimal.RequireFromString("3.5"),
		Quantity:  2,
		Cost:      decimal.RequireFromString("7"),
	}

	t.Run("Default Template", func(t *testing.T) {
		encoded, err := models.EncodeLine(line, models.DefaultLineTemplate, models.DefaultLineSeparator)

		require.NoError(t, err)
		assert.Equal(t, "42:latte:3.50:2:7.00", encoded)
	})

	t.Run("Price And Cost Always Render Two Decimals", func(t *testing.T) {
		line := models.CartLine{
			ProductID: 1,
			Name:      "espresso",
			UnitPrice: decimal.RequireFromString("2"),
			Quantity:  3,
			Cost:      decimal.RequireFromString("6.000"),
		}

		encoded, err := models.EncodeLine(line, models.DefaultLineTemplate, models.DefaultLineSeparator)

		require.NoError(t, err)
		assert.Equal(t, "1:espresso:2.00:3:6.00", encoded)
	})

	t.Run("Custom Template And Separator", func(t *testing.T) {
		encoded, err := models.EncodeLine(line, "quantity|id", "|")

		require.NoError(t, err)
		assert.Equal(t, "2|42", encoded)
	})

	t.Run("Unknown Template Field", func(t *testing.T) {
		_, err := models.EncodeLine(line, "id:sku", ":")

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeMalformedLine))
	})
}

func TestDecodeLine(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		original := models.CartLine{
			ProductID: 42,
			Name:      "latte",
			UnitPrice: decimal.RequireFromString("3.50"),
			Quantity:  2,
			Cost:      decimal.RequireFromString("7.00"),
		}

		encoded, err := models.EncodeLine(original, models.DefaultLineTemplate, models.DefaultLineSeparator)
		require.NoError(t, err)

		decoded, err := models.DecodeLine(encoded, models.DefaultLineTemplate, models.DefaultLineSeparator)
		require.NoError(t, err)

		assert.Equal(t, original.ProductID, decoded.ProductID)
		assert.Equal(t, original.Name, decoded.Name)
		assert.True(t, original.UnitPrice.Equal(decoded.UnitPrice))
		assert.Equal(t, original.Quantity, decoded.Quantity)
		assert.True(t, original.Cost.Equal(decoded.Cost))
	})

	t.Run("Malformed Payloads", func(t *testing.T) {
		tests := []struct {
			name    string
			encoded string
		}{
			{"Too Few Fields", "42:latte:3.50:2"},
			{"Too Many Fields", "42:latte:3.50:2:7.00:extra"},
			{"Non Numeric Id", "abc:latte:3.50:2:7.00"},
			{"Non Numeric Price", "42:latte:cheap:2:7.00"},
			{"Negative Price", "42:latte:-3.50:2:7.00"},
			{"Non Numeric Quantity", "42:latte:3.50:two:7.00"},
			{"Negative Quantity", "42:latte:3.50:-2:7.00"},
			{"Negative Cost", "42:latte:3.50:2:-7.00"},
			{"Empty String", ""},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := models.DecodeLine(tc.encoded, models.DefaultLineTemplate, models.DefaultLineSeparator)

				require.Error(t, err)
				assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeMalformedLine))
			})
		}
	})

	t.Run("Custom Template", func(t *testing.T) {
		decoded, err := models.DecodeLine("5|mocha", "id|name", "|")

		require.NoError(t, err)
		assert.Equal(t, int64(5), decoded.ProductID)
		assert.Equal(t, "mocha", decoded.Name)
	})
}
