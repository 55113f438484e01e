package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// SignedTokenAuthorizer validates stateless HMAC-signed bearer tokens of the
// form base64url(userId|email|hex-signature). Tokens are minted out of band
// (amityctl, or the auth callback of the hosting platform) with the shared
// secret.
type SignedTokenAuthorizer struct {
	secret []byte
}

func NewSignedTokenAuthorizer(secret string) (*SignedTokenAuthorizer, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("auth secret must be at least 16 bytes")
	}
	return &SignedTokenAuthorizer{secret: []byte(secret)}, nil
}

func (a *SignedTokenAuthorizer) Authorize(ctx context.Context, token string) (*ActorInfo, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed token: %w", ErrUnauthenticated)
	}
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("malformed token: %w", ErrUnauthenticated)
	}
	userID, email, sig := parts[0], parts[1], parts[2]
	if !hmac.Equal([]byte(sig), []byte(a.sign(userID, email))) {
		return nil, fmt.Errorf("bad signature: %w", ErrUnauthenticated)
	}
	return &ActorInfo{UserID: userID, Email: email}, nil
}

// MintToken issues a token for the given identity.
func (a *SignedTokenAuthorizer) MintToken(userID, email string) string {
	payload := userID + "|" + email + "|" + a.sign(userID, email)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func (a *SignedTokenAuthorizer) sign(userID, email string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(userID))
	mac.Write([]byte{0})
	mac.Write([]byte(email))
	return fmt.Sprintf("%x", mac.Sum(nil))
}
