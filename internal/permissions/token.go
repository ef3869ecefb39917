package permissions

import (
	"crypto/subtle"
	"strings"
)

// TokenAuthorizer checks the static bearer token of API callers
type TokenAuthorizer struct {
	token []byte
}

// NewTokenAuthorizer creates an authorizer for the configured token
func NewTokenAuthorizer(token string) *TokenAuthorizer {
	return &TokenAuthorizer{token: []byte(token)}
}

// Authorize reports whether the Authorization header carries the token
func (a *TokenAuthorizer) Authorize(header string) bool {
	if len(a.token) == 0 {
		return false
	}
	presented, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), a.token) == 1
}
