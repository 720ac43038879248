package controllers

import (
	"net/http"

	"sound-garage/apperror"
	"sound-garage/authentication"
	"sound-garage/environment"
	"sound-garage/helpers"
	"sound-garage/models"

	"github.com/gin-gonic/gin"
)

// AddPlaylist creates a new playlist for the current user
func AddPlaylist(c *gin.Context) {

	var data models.Playlist
	var apiError ErrorResponse

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	playlist, err := environment.Env.PlaylistModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	userName, err := environment.Env.UserModel.GetUserName(userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}
	playlist.MetaInfo.CreatedID = helpers.ObjectID(userID)
	playlist.MetaInfo.CreatedName = userName

	id, err := environment.Env.PlaylistModel.CreatePlaylist(playlist)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, Created{id})
}

// GetPlaylist returns one playlist - private lists only for their creator
func GetPlaylist(c *gin.Context) {

	// a token is optional, guests may view public lists
	userID := authentication.Identify(c.Request)

	playlist, err := environment.Env.PlaylistModel.GetPlaylist(c.Param("id"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// GetUserPlaylists lists a user's playlists
// others only see the public ones
func GetUserPlaylists(c *gin.Context) {

	requestorID := authentication.Identify(c.Request)

	playlists, err := environment.Env.PlaylistModel.GetUserPlaylists(c.Param("id"), requestorID)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, playlists)
}

// AddPlaylistTrack appends a track to a playlist (creator only)
func AddPlaylistTrack(c *gin.Context) {

	var apiError ErrorResponse

	data := struct {
		TrackID string `json:"trackID" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.PlaylistModel.AddTrack(c.Param("id"), data.TrackID, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// RemovePlaylistTrack removes a track from a playlist (creator only)
func RemovePlaylistTrack(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.PlaylistModel.RemoveTrack(c.Param("id"), c.Param("trackId"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeletePlaylist removes an entire playlist (creator only)
func DeletePlaylist(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.PlaylistModel.DeletePlaylist(c.Param("id"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
