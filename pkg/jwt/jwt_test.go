package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate("secreto", "user-1", "biz-1", "bodeguero", "traslados-api", 5)
	require.NoError(t, err)

	userID, businessID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "biz-1", businessID)
	assert.Equal(t, "bodeguero", role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secreto", "user-1", "biz-1", "admin", "", 5)
	require.NoError(t, err)

	_, _, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := Generate("secreto", "user-1", "biz-1", "admin", "", -1)
	require.NoError(t, err)

	_, _, _, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "user-1", "biz-1", "admin", "", 5)
	assert.Error(t, err)
}
