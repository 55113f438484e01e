package auth

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedTokenRoundTrip(t *testing.T) {
	az, err := NewSignedTokenAuthorizer("0123456789abcdef")
	require.NoError(t, err)

	token := az.MintToken("u-42", "pat@example.test")
	actor, err := az.Authorize(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", actor.UserID)
	assert.Equal(t, "pat@example.test", actor.Email)
}

func TestSignedTokenRejectsTampering(t *testing.T) {
	az, err := NewSignedTokenAuthorizer("0123456789abcdef")
	require.NoError(t, err)
	other, err := NewSignedTokenAuthorizer("fedcba9876543210")
	require.NoError(t, err)

	// Token minted under a different secret.
	_, err = az.Authorize(context.Background(), other.MintToken("u-42", "pat@example.test"))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Identity swapped inside a valid envelope.
	forged := base64.RawURLEncoding.EncodeToString([]byte("u-99|pat@example.test|deadbeef"))
	_, err = az.Authorize(context.Background(), forged)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = az.Authorize(context.Background(), "not-base64!!")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignedTokenSecretLength(t *testing.T) {
	_, err := NewSignedTokenAuthorizer("short")
	assert.Error(t, err)
}
