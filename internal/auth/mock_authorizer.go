package auth

import (
	"context"
	"fmt"
	"strings"
)

const (
	// LocalDevToken is the hardcoded bearer token for local development only.
	LocalDevToken = "amity_local_dev_token"

	// devTokenPrefix lets tests mint per-user tokens of the form
	// "amity_dev_<userId>" without a real identity provider.
	devTokenPrefix = "amity_dev_"
)

// MockAuthorizer is a development-only authorizer. It accepts LocalDevToken
// and devTokenPrefix-style tokens; anything else is rejected.
type MockAuthorizer struct{}

func NewMockAuthorizer() *MockAuthorizer { return &MockAuthorizer{} }

func (m *MockAuthorizer) Authorize(ctx context.Context, token string) (*ActorInfo, error) {
	if token == LocalDevToken {
		return &ActorInfo{UserID: "amity-dev", Email: "dev@amity.local"}, nil
	}
	if userID, ok := strings.CutPrefix(token, devTokenPrefix); ok && userID != "" {
		return &ActorInfo{UserID: userID, Email: userID + "@amity.local"}, nil
	}
	return nil, fmt.Errorf("invalid development token: %w", ErrUnauthenticated)
}

// DevToken returns the development token for a given user id.
func DevToken(userID string) string { return devTokenPrefix + userID }
