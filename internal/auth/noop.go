package auth

import (
	"context"
	"errors"
)

// noopVerifier treats the presented token as the user id without any signature checks.
type noopVerifier struct{}

func newNoopVerifier() Verifier {
	return noopVerifier{}
}

func (noopVerifier) Verify(_ context.Context, token string) (AuthenticatedUser, error) {
	if token == "" {
		return AuthenticatedUser{}, errors.New("empty token")
	}
	return AuthenticatedUser{UserID: token, Token: token}, nil
}
