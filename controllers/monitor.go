package controllers

import (
	"net/http"

	"sound-garage/authentication"
	"sound-garage/environment"

	"github.com/gin-gonic/gin"
)

// monitoring endpoints for the request registry (admin only)

func CountRequests(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil || !isAdmin(userID) {
		c.Status(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, environment.Env.Requests.Count())
}

func DumpRequests(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil || !isAdmin(userID) {
		c.Status(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, environment.Env.Requests.Dump(50))
}

func FlushRequests(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil || !isAdmin(userID) {
		c.Status(http.StatusUnauthorized)
		return
	}

	environment.Env.Requests.Flush()

	c.Status(http.StatusOK)
}
