package domain

import "errors"

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnknownSource indicates a feed source the backend cannot serve.
	ErrUnknownSource = errors.New("unknown feed source")

	// ErrEmptyIdentifier indicates a source variant is missing its identifying data.
	ErrEmptyIdentifier = errors.New("feed source has no identifying data")
)
