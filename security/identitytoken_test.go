package security

import (
	"encoding/base64"
	"testing"
	"time"

	"axiapac.com/timetrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestCreateAndParseIdentityToken(t *testing.T) {
	token, err := CreateIdentityToken(&Identity{UserID: 42, Email: "boss@example.com", Role: model.RoleSuperAdmin}, secret, 3600)
	require.NoError(t, err)

	claims, err := ParseIdentityToken(token, secret)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, model.RoleSuperAdmin, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokensAreUnique(t *testing.T) {
	identity := &Identity{UserID: 1, Role: model.RoleEmployee}
	a, err := CreateIdentityToken(identity, secret, 60)
	require.NoError(t, err)
	b, err := CreateIdentityToken(identity, secret, 60)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseRejects(t *testing.T) {
	token, err := CreateIdentityToken(&Identity{UserID: 1}, secret, 60)
	require.NoError(t, err)

	other := base64.StdEncoding.EncodeToString([]byte("another secret of decent length"))
	_, err = ParseIdentityToken(token, other)
	assert.Error(t, err)

	expired, err := CreateIdentityToken(&Identity{UserID: 1}, secret, -60)
	require.NoError(t, err)
	_, err = ParseIdentityToken(expired, secret)
	assert.Error(t, err)

	_, err = ParseIdentityToken("not-a-token", secret)
	assert.Error(t, err)

	_, err = CreateIdentityToken(&Identity{UserID: 1}, "%%%", 60)
	assert.Error(t, err)
}

func TestInspectToken(t *testing.T) {
	token, err := CreateIdentityToken(&Identity{UserID: 7, Email: "a@example.com", Role: model.RoleEmployee}, secret, 3600)
	require.NoError(t, err)

	info, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7", info.Subject)
	assert.Equal(t, "a@example.com", info.Email)
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(time.Now().Add(2*time.Hour)))

	_, err = InspectToken("opaque-token")
	assert.Error(t, err)
}
