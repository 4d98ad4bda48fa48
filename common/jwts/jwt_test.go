package jwts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCarriesStablePlayerID(t *testing.T) {
	token, err := GetToken(NewClaims("p-1", "Ayşe", time.Hour), "secret")
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "p-1", claims.PlayerID)
	assert.Equal(t, "Ayşe", claims.Name)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GetToken(NewClaims("p-1", "x", time.Hour), "secret")
	require.NoError(t, err)

	_, err = ParseToken(token, "other")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GetToken(NewClaims("p-1", "x", -time.Minute), "secret")
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsEmptyPlayer(t *testing.T) {
	token, err := GetToken(NewClaims("", "x", time.Hour), "secret")
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}
