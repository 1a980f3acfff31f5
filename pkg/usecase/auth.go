package usecase

import (
	"crypto/subtle"

	"github.com/m-mizutani/goerr/v2"
)

// TokenAuthenticator checks the shared verification token sent by Slack
// outgoing webhooks and slash commands
type TokenAuthenticator struct {
	tokens [][]byte
}

// NewTokenAuthenticator creates an authenticator accepting any of tokens.
// Empty tokens are ignored; with no tokens every request is rejected.
func NewTokenAuthenticator(tokens ...string) *TokenAuthenticator {
	auth := &TokenAuthenticator{}
	for _, t := range tokens {
		if t != "" {
			auth.tokens = append(auth.tokens, []byte(t))
		}
	}
	return auth
}

// Verify returns ErrInvalidToken unless token matches an allowed token. Every
// allowed token is compared so the time taken does not depend on which matched.
func (x *TokenAuthenticator) Verify(token string) error {
	if x == nil || token == "" {
		return goerr.Wrap(ErrInvalidToken, "empty token")
	}

	given := []byte(token)
	matched := 0
	for _, allowed := range x.tokens {
		matched |= subtle.ConstantTimeCompare(given, allowed)
	}

	if matched != 1 {
		return goerr.Wrap(ErrInvalidToken, "token is not allowed")
	}
	return nil
}
