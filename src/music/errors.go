package music

import "errors"

// Sentinel errors for the catalog domain. Callers match with errors.Is.
var (
	// ErrAccountNotFound is returned when a username has no stored account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrWrongPassword is returned when an existing account's password
	// does not match the one supplied at login.
	ErrWrongPassword = errors.New("incorrect password")

	// ErrSongNotFound is returned when a song id is not in the account's catalog.
	ErrSongNotFound = errors.New("song not found")

	// ErrCollectionNotFound is returned when a named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDuplicateName is returned when creating a collection whose name is
	// already taken within its kind.
	ErrDuplicateName = errors.New("collection already exists")

	// ErrNotArtist is returned when an operation reserved for artist accounts
	// is attempted by a regular user.
	ErrNotArtist = errors.New("operation requires an artist account")
)
