package inventory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

func TestApplyDelta(t *testing.T) {
	ten := decimal.NewFromInt(10)

	next, err := ApplyDelta(ten, Posting{Type: entity.LedgerTransferOut, Delta: decimal.NewFromInt(-10)})
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "retirar todo deja el saldo en cero")

	_, err = ApplyDelta(ten, Posting{Type: entity.LedgerTransferOut, Delta: decimal.NewFromInt(-11)})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = ApplyDelta(ten, Posting{Type: entity.LedgerAdjustment, Delta: decimal.RequireFromString("-10.5")})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	next, err = ApplyDelta(decimal.Zero, Posting{Type: entity.LedgerTransferIn, Delta: decimal.RequireFromString("2.25")})
	require.NoError(t, err)
	assert.Equal(t, "2.25", next.String())
}

func TestSortForLocking(t *testing.T) {
	postings := []Posting{
		{LocationID: "b", VariationID: "1"},
		{LocationID: "a", VariationID: "2"},
		{LocationID: "a", VariationID: "1"},
	}
	SortForLocking(postings)
	assert.Equal(t, "a", postings[0].LocationID)
	assert.Equal(t, "1", postings[0].VariationID)
	assert.Equal(t, "2", postings[1].VariationID)
	assert.Equal(t, "b", postings[2].LocationID)
}

func TestValidateScale(t *testing.T) {
	assert.True(t, MinQuantity.Equal(decimal.RequireFromString("0.0001")))

	for _, v := range []string{"1", "0.0001", "12.5", "-3.2500", "1.00000"} {
		assert.NoError(t, ValidateScale(decimal.RequireFromString(v)), v)
	}
	for _, v := range []string{"0.00001", "4.99999", "-0.00005"} {
		err := ValidateScale(decimal.RequireFromString(v))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "%s: %v", v, err)
	}
}
