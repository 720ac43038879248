package controllers

import (
	"net/http"
	"sound-garage/apperror"
	"sound-garage/authentication"
	"sound-garage/environment"
	"sound-garage/models"

	"github.com/gin-gonic/gin"
)

// GetUser returns a user's profile
func GetUser(c *gin.Context) {

	// users may only request their own profile
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")
	if id != userID {
		c.Status(http.StatusUnauthorized)
		return
	}

	dbUser, err := environment.Env.UserModel.GetUserByID(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// never send the password back
	dbUser.Password = ""

	c.JSON(http.StatusOK, &dbUser)
}

// GetUserReactions returns the reactions of the current identity (own profile overview)
// members are identified by their token, guests by their session key
// http://localhost:3000/user/reactions?session=anon_...
func GetUserReactions(c *gin.Context) {

	userID := authentication.Identify(c.Request)
	sessionID := c.Query("session")
	if userID == "" && sessionID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}

	reactions, err := environment.Env.ReactionModel.GetUserReactions(userID, sessionID)
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		// technical errors
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, reactions)
}

// FollowArtist subscribes the current user to an artist
func FollowArtist(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var artistID = c.Param("id")

	err = environment.Env.UserModel.FollowArtist(userID, artistID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// UnfollowArtist removes a subscription
func UnfollowArtist(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var artistID = c.Param("id")

	err = environment.Env.UserModel.UnfollowArtist(userID, artistID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// GetFollowedArtists lists the artists the current user follows
func GetFollowedArtists(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	follows, err := environment.Env.UserModel.GetFollowedArtists(userID)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// resolve artist names for the client
	type followItem struct {
		Follow     models.Follow `json:"follow"`
		ArtistName string        `json:"artistName"`
	}

	var items []followItem
	for _, f := range follows {
		item := followItem{Follow: f}
		artist, err := environment.Env.ArtistModel.GetArtist(f.ArtistID.Hex())
		if err == nil {
			item.ArtistName = artist.Name
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, items)
}
