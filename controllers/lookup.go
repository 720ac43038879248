package controllers

import (
	"fmt"
	"net/http"
	"sound-garage/database"

	"github.com/gin-gonic/gin"
)

// ListLookups delivers all code/text lookups to the clients
func ListLookups(c *gin.Context) {
	lookups, err := database.GetLookups()
	if err != nil {
		fmt.Println(err)
		c.JSON(http.StatusNoContent, nil)
		return
	}

	c.JSON(http.StatusOK, lookups)
}
