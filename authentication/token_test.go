package authentication

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToken(t *testing.T) {

	os.Setenv("ACCESS_SECRET", "test-access-secret")
	os.Setenv("REFRESH_SECRET", "test-refresh-secret")

	td, err := CreateToken("604b6859f09f3aeecc9215c5")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(td.AccessUUID, "at_"))
	assert.True(t, strings.HasPrefix(td.RefreshUUID, "rt_"))
	assert.NotEqual(t, td.AccessToken, td.RefreshToken)

	// access token expires before the refresh token
	assert.Less(t, td.AtExpires, td.RtExpires)
	assert.Greater(t, td.AtExpires, time.Now().Unix())

	// the access token must verify against its secret and carry the claims
	token, err := jwt.Parse(td.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("ACCESS_SECRET")), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "604b6859f09f3aeecc9215c5", claims["user_id"])
	assert.Equal(t, td.AccessUUID, claims["access_uuid"])

	// the refresh token must not verify against the access secret
	_, err = jwt.Parse(td.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("ACCESS_SECRET")), nil
	})
	assert.Error(t, err)
}
