package controllers

import (
	"net/http"
	"strconv"
	"time"

	"sound-garage/apperror"
	"sound-garage/authentication"
	"sound-garage/environment"
	"sound-garage/helpers"
	"sound-garage/models"

	"github.com/gin-gonic/gin"
)

// AddTrack publishes a new track
func AddTrack(c *gin.Context) {

	var data models.Track
	var apiError ErrorResponse

	// use 'shouldBind' so we can send customized messages
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

	track, err := environment.Env.TrackModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// set creator info from the token, never trust the client here
	userName, err := environment.Env.UserModel.GetUserName(userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}
	track.MetaInfo.CreatedID = helpers.ObjectID(userID)
	track.MetaInfo.CreatedName = userName

	id, err := environment.Env.TrackModel.CreateTrack(track)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, Created{id})
}

// ListTracks returns a list of tracks, optionally filtered
// http://localhost:3000/tracks?genre=Synthwave&search=night
func ListTracks(c *gin.Context) {

	var search models.TrackSearch

	// the listing is open to guests, a token just refines the search scope
	search.UserID = authentication.Identify(c.Request)
	search.GenreText = c.Query("genre")
	search.SearchTerm = c.Query("search")

	tracks, err := environment.Env.TrackModel.SearchTracks(&search)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// fire and forget
	go environment.Env.Tracker.SaveSearch(&search, tracks)

	c.JSON(http.StatusOK, tracks)
}

// GetTrack returns the details of a track
func GetTrack(c *gin.Context) {

	track, err := environment.Env.TrackModel.GetTrack(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, track)
}

// UpdateTrack modifies a track's editable fields
func UpdateTrack(c *gin.Context) {

	var data models.Track
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

	track, err := environment.Env.TrackModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	err = environment.Env.TrackModel.UpdateTrack(track, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteTrack removes a track (creator or admin only)
func DeleteTrack(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.TrackModel.DeleteTrack(c.Param("id"), userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// PlayTrack registers a playback (analytics) - open to guests
// the client key identifies the device, members are identified by their token
func PlayTrack(c *gin.Context) {

	trackID := c.Param("id")
	userID := authentication.Identify(c.Request)
	clientKey := c.Query("client")
	if clientKey == "" {
		clientKey = c.ClientIP()
	}

	environment.Env.Tracker.SavePlay(trackID, userID, clientKey)
	environment.Env.Listeners.MarkListening(trackID, clientKey)

	c.Status(http.StatusOK)
}

// GetTrackPlays returns the play count of a track since a given date
// http://localhost:3000/tracks/608c2e7418aa79HexHex/plays?since=2026-01-01
func GetTrackPlays(c *gin.Context) {

	startDT, err := time.Parse("2006-01-02", c.Query("since"))
	if err != nil {
		// default to the beginning of the current month
		now := time.Now()
		startDT = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	plays, err := environment.Env.Tracker.GetPlays(c.Param("id"), startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plays": plays})
}

// ListTrackListeners returns who listened to a track since a given date (admin reporting)
func ListTrackListeners(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}
	if !isAdmin(userID) {
		c.Status(http.StatusUnauthorized)
		return
	}

	startDT, err := time.Parse("2006-01-02", c.Query("since"))
	if err != nil {
		startDT = time.Now().AddDate(0, -1, 0)
	}

	plays, err := environment.Env.Tracker.ListListeners(c.Param("id"), startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}
	if plays == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, plays)
}

// CountTrackListeners returns the number of people listening right now
func CountTrackListeners(c *gin.Context) {

	count, err := environment.Env.Listeners.CountListeners(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listeners": strconv.FormatInt(count, 10)})
}
