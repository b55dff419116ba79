package auth

import "errors"

var (
	ErrNoToken           = errors.New("no authentication provided")
	ErrInvalidToken      = errors.New("invalid token")
	ErrNoValidatedClaims = errors.New("no validated claims found in request ctx")
	ErrInvalidSubject    = errors.New("invalid subject claim")
)
