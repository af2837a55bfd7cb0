package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("s3cret")

func TestIssueValidate(t *testing.T) {
	token, err := Issue(secret, Claims{Subject: "1", Email: "admin@masterstudent.com", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	c, err := Validate(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "1", c.Subject)
	assert.Equal(t, "admin@masterstudent.com", c.Email)
	assert.Equal(t, "admin", c.Role)
}

func TestValidateRejects(t *testing.T) {
	expired, err := Issue(secret, Claims{Subject: "1"}, -time.Minute)
	require.NoError(t, err)
	_, err = Validate(secret, expired)
	assert.ErrorIs(t, err, ErrExpired)

	other, err := Issue([]byte("other"), Claims{Subject: "1"}, time.Hour)
	require.NoError(t, err)
	_, err = Validate(secret, other)
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString(secret)
	require.NoError(t, err)
	_, err = Validate(secret, noExp)
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Validate(secret, none)
	assert.Error(t, err)
}
