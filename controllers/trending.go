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

// GetTrendingTracks returns the current trending list for a timeframe
// http://localhost:3000/trending?timeframe=24h&limit=25
func GetTrendingTracks(c *gin.Context) {

	timeframe := models.NormalizeTimeframe(c.Query("timeframe"))

	limit, err := strconv.ParseInt(c.Query("limit"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 100
	}

	tracks, err := environment.Env.TrendingModel.GetTrendingTracks(timeframe, c.Query("category"), limit)
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

// GetFeedbackStream returns the discovery feed
// http://localhost:3000/stream?sort=controversial
func GetFeedbackStream(c *gin.Context) {

	sortMode := c.Query("sort")
	if sortMode == "" {
		sortMode = models.StreamRecent
	}

	limit, err := strconv.ParseInt(c.Query("limit"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}

	offset, err := strconv.ParseInt(c.Query("offset"), 10, 64)
	if err != nil || offset < 0 {
		offset = 0
	}

	items, err := environment.Env.TrendingModel.GetFeedbackStream(sortMode, limit, offset)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, items)
}

// ComputeTrending rebuilds the ranking of one timeframe (admin/scheduler only)
// usually triggered by the job scheduler, the endpoint exists for maintenance
func ComputeTrending(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}
	if !isAdmin(userID) {
		c.Status(http.StatusUnauthorized)
		return
	}

	timeframe := models.NormalizeTimeframe(c.Query("timeframe"))

	processed, err := environment.Env.TrendingModel.ComputeTrending(timeframe)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframe": timeframe,
		"processed": processed,
	})
}
