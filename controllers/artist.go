package controllers

import (
	"net/http"
	"time"

	"sound-garage/apperror"
	"sound-garage/authentication"
	"sound-garage/environment"
	"sound-garage/helpers"
	"sound-garage/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddArtist creates a new artist profile
func AddArtist(c *gin.Context) {

	var data models.Artist
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

	artist, err := environment.Env.ArtistModel.Validate(data)
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
	artist.MetaInfo.CreatedID = helpers.ObjectID(userID)
	artist.MetaInfo.CreatedName = userName

	id, err := environment.Env.ArtistModel.CreateArtist(artist)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, Created{id})
}

// GetArtist returns an artist profile including the follower count
func GetArtist(c *gin.Context) {

	artist, err := environment.Env.ArtistModel.GetArtist(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, artist)
}

// ListArtists searches artists by name
// http://localhost:3000/artists?search=daft
func ListArtists(c *gin.Context) {

	artists, err := environment.Env.ArtistModel.SearchArtists(c.Query("search"))
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, artists)
}

// UpdateArtist modifies an artist profile (creator or admin)
func UpdateArtist(c *gin.Context) {

	var data models.Artist
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

	artist, err := environment.Env.ArtistModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// record who changed the profile
	artist.MetaInfo.ModifiedID = helpers.ObjectID(userID)

	err = environment.Env.ArtistModel.UpdateArtist(artist)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// GetArtistFollowers lists who follows an artist
func GetArtistFollowers(c *gin.Context) {

	followers, err := environment.Env.UserModel.GetArtistFollowers(c.Param("id"))
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// resolve the follower names for the client
	type followerItem struct {
		UserID   primitive.ObjectID `json:"userID"`
		UserName string             `json:"userName"`
		SinceTS  time.Time          `json:"sinceTS"`
	}

	var items []followerItem
	for _, f := range followers {
		item := followerItem{UserID: f.UserID, SinceTS: f.SinceTS}
		item.UserName, _ = environment.Env.UserModel.GetUserName(f.UserID.Hex())
		items = append(items, item)
	}

	c.JSON(http.StatusOK, items)
}

// GetArtistTracks lists all tracks of an artist
func GetArtistTracks(c *gin.Context) {

	tracks, err := environment.Env.TrackModel.GetArtistTracks(c.Param("id"))
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tracks)
}
