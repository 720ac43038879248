package models

import (
	"errors"
	"sound-garage/apperror"
)

// custom error types (generic types found in apperror package)

// re-exported so model consumers don't need both packages
var ErrNoData = apperror.ErrNoData

// user
var (
	ErrUserNameNotAvailable = errors.New("user name is not available")
	ErrEMailAddressTaken    = errors.New("email-address is already used")
	ErrInvalidUser          = errors.New("invalid user name or password")
	ErrInvalidPassword      = errors.New("password does not meet rules")
	ErrInvalidFollow        = errors.New("could not follow/unfollow artist")
)

// track
// transformed by controllers to respective Unprocessable Entity (422)
var (
	ErrTrackTitleMissing = errors.New("track title is required")
	ErrTrackNotFound     = errors.New("track does not exist")
)

// reaction
var (
	ErrReactionKindInvalid = errors.New("unknown reaction kind")
	ErrReactionNotFound    = errors.New("reaction does not exist")
	ErrNotReactionOwner    = errors.New("reaction belongs to another identity")
)

// playlist
var (
	ErrPlaylistNameMissing = errors.New("playlist name is required")
	ErrPlaylistNotFound    = errors.New("playlist does not exist")
)

// artist
var (
	ErrArtistNameMissing = errors.New("artist name is required")
	ErrArtistNotFound    = errors.New("artist does not exist")
)
