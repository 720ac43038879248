package controllers

import (
	"net/http"
	"strconv"

	"sound-garage/apperror"
	"sound-garage/authentication"
	"sound-garage/environment"
	"sound-garage/models"

	"github.com/gin-gonic/gin"
)

// CastReaction records a reaction to a track - open to guests
// guests receive a session ID they must keep to change or remove the reaction later
func CastReaction(c *gin.Context) {

	var data models.Reaction
	var apiError ErrorResponse

	// use 'shouldBind' so we can send customized messages
	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// a token is optional here, guests may react too.
	// the identity always comes from the token, never from the body;
	// the session is stamped here (not in the model), so it can be
	// returned to the client for later updates
	userID := authentication.Identify(c.Request)
	models.ApplyIdentity(&data, userID)

	stats, reactionID, err := environment.Env.ReactionModel.CastReaction(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// the reaction ID addresses later changes, the session key proves
	// ownership for guests
	c.JSON(http.StatusCreated, gin.H{
		"reactionID": reactionID,
		"stats":      stats,
		"sessionID":  data.SessionID,
	})
}

// UpdateReaction changes the kind and/or comment of an existing reaction
// members prove ownership by their token, guests by the session ID
func UpdateReaction(c *gin.Context) {

	var apiError ErrorResponse

	data := struct {
		Kind      string `json:"kind" binding:"required"`
		Comment   string `json:"comment"`
		SessionID string `json:"sessionID"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	userID := authentication.Identify(c.Request)

	stats, err := environment.Env.ReactionModel.UpdateReaction(c.Param("id"), userID, data.SessionID, data.Kind, data.Comment)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// DeleteReaction removes a reaction - ownership rules as in UpdateReaction
// guests pass their session in the query string (DELETE carries no body)
func DeleteReaction(c *gin.Context) {

	userID := authentication.Identify(c.Request)
	sessionID := c.Query("session")

	stats, err := environment.Env.ReactionModel.DeleteReaction(c.Param("id"), userID, sessionID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetFeedbackStats returns the denormalized reaction summary of a track
// tracks without any reactions deliver a zeroed summary, not a 404
func GetFeedbackStats(c *gin.Context) {

	stats, err := environment.Env.ReactionModel.GetStats(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserReaction returns the requestor's own reaction to a track (if any)
// used by clients to highlight the pressed button
func GetUserReaction(c *gin.Context) {

	userID := authentication.Identify(c.Request)
	sessionID := c.Query("session")

	kind, err := environment.Env.ReactionModel.GetUserReaction(c.Param("id"), userID, sessionID)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"kind": kind})
}

// GetTrackReactions lists the most recent reactions to a track (with comments)
// http://localhost:3000/tracks/608c2e7418aa79HexHex/reactions?limit=20
func GetTrackReactions(c *gin.Context) {

	limit, err := strconv.ParseInt(c.Query("limit"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	reactions, err := environment.Env.ReactionModel.GetTrackReactions(c.Param("id"), limit)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, reactions)
}
