package domain

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for refresh tokens that fail signature,
	// algorithm, or expiry checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthorized signals insufficient privileges. Deletion of a missing
	// user also resolves to this error to avoid leaking user existence.
	ErrUnauthorized = errors.New("unauthorized")

	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCodeCount rejects access-code batches outside [1,100] before
	// any document is written.
	ErrInvalidCodeCount = errors.New("count must be between 1 and 100")

	// ErrInvalidOperator rejects query operators outside the supported set.
	ErrInvalidOperator = errors.New("unsupported query operator")
)
