package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sound-garage/apperror"
	"sound-garage/models"
)

// generic custom error types
var (
	ErrInvalidRequest = errors.New("invalid json")
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
}

// HandleError encodes the std ErrorResponse
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {

	if err == nil {
		apiError.Code = 0
		apiError.Message = ""

		return 0, apiError
	}

	fmt.Println(err)
	switch err {
	// system
	case apperror.ErrMultipleRecords:
		apiError.Code = MultipleRecords
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	case apperror.ErrRecordChanged:
		apiError.Code = RecordChanged
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusConflict
	case apperror.ErrRateLimited:
		apiError.Code = TooManyRequests
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusTooManyRequests
	// permissions
	case apperror.ErrGuest:
		apiError.Code = PermissionGuest
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case apperror.ErrPrivate:
		apiError.Code = PermissionPrivate
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case apperror.ErrDenied:
		apiError.Code = ActionDenied
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// user
	case models.ErrUserNameNotAvailable:
		apiError.Code = UserNameTaken
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrEMailAddressTaken:
		apiError.Code = EMailAddressTaken
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidUser:
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidPassword:
		apiError.Code = InvalidPassword
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrInvalidFollow:
		apiError.Code = InvalidFollow
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	// track
	case models.ErrTrackTitleMissing:
		apiError.Code = TrackTitleMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrTrackNotFound:
		apiError.Code = TrackNotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	// reaction
	case models.ErrReactionKindInvalid:
		apiError.Code = ReactionKindInvalid
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrReactionNotFound:
		apiError.Code = ReactionNotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	case models.ErrNotReactionOwner:
		apiError.Code = ReactionNotOwned
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnauthorized
	// artist
	case models.ErrArtistNameMissing:
		apiError.Code = ArtistNameMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrArtistNotFound:
		apiError.Code = ArtistNotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	// playlist
	case models.ErrPlaylistNameMissing:
		apiError.Code = PlaylistNameMissing
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnprocessableEntity
	case models.ErrPlaylistNotFound:
		apiError.Code = PlaylistNotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	default:
		apiError.Code = SystemError
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	}
	return httpStatus, apiError
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	InvalidLogin
	// generic system
	MultipleRecords
	RecordChanged
	ActionDenied
	TooManyRequests
	// permission
	PermissionGuest
	PermissionPrivate
	// user
	UserNameTaken
	EMailAddressTaken
	InvalidPassword
	InvalidFollow
	// track
	TrackTitleMissing
	TrackNotFound
	// reaction
	ReactionKindInvalid
	ReactionNotFound
	ReactionNotOwned
	// artist
	ArtistNameMissing
	ArtistNotFound
	// playlist
	PlaylistNameMissing
	PlaylistNotFound
	SystemError = 99999
)

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common (system)
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case InvalidLogin:
		msg = "invalid user name or password"
	case MultipleRecords:
		msg = "multiple records found"
	case RecordChanged:
		msg = "record changed by another user"
	case ActionDenied:
		msg = "update/delete action not allowed"
	case TooManyRequests:
		msg = "too many requests - slow down"
	// permission (item access)
	case PermissionGuest:
		msg = "user is guest"
	case PermissionPrivate:
		msg = "item is private"
	// user
	case UserNameTaken:
		msg = "user name is not available"
	case EMailAddressTaken:
		msg = "email-address is already used"
	case InvalidPassword:
		msg = "password does not meet rules"
	case InvalidFollow:
		msg = "could not follow or unfollow artist"
	// track
	case TrackTitleMissing:
		msg = "track title is required"
	case TrackNotFound:
		msg = "track does not exist"
	// reaction
	case ReactionKindInvalid:
		msg = "unknown reaction kind"
	case ReactionNotFound:
		msg = "reaction does not exist"
	case ReactionNotOwned:
		msg = "reaction belongs to another identity"
	// artist
	case ArtistNameMissing:
		msg = "artist name is required"
	case ArtistNotFound:
		msg = "artist does not exist"
	// playlist
	case PlaylistNameMissing:
		msg = "playlist name is required"
	case PlaylistNotFound:
		msg = "playlist does not exist"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}
