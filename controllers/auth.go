package controllers

import (
	"net/http"
	"os"
	"sound-garage/authentication"
	"sound-garage/environment"
	"sound-garage/helpers"
	"sound-garage/models"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserExists maybe used to validate new accounts while typing into the form
func UserExists(c *gin.Context) {

	var apiError ErrorResponse

	// anonymous struct used to receive input (POST BODY)
	data := struct {
		LoginName string `json:"loginName" binding:"required"`
	}{}

	// use 'shouldBind' so we can send customized messages
	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	exists := environment.Env.UserModel.UserExists(data.LoginName)

	// wrap response into an object
	res := struct {
		Exists bool `json:"exists"`
	}{exists}

	c.JSON(http.StatusOK, res)
}

// EMailExists maybe used to validate new accounts while typing into the form
func EMailExists(c *gin.Context) {

	var apiError ErrorResponse

	// anonymous struct used to receive input (POST BODY)
	data := struct {
		EMailAddress string `json:"eMailAddress" binding:"required"`
	}{}

	// use 'shouldBind' so we can send customized messages
	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	exists := environment.Env.UserModel.EMailAddressExists(data.EMailAddress)

	// wrap response into an object
	res := struct {
		Exists bool `json:"exists"`
	}{exists}

	c.JSON(http.StatusOK, res)
}

// Register a new User
func Register(c *gin.Context) {

	var (
		err      error
		data     models.User
		apiError ErrorResponse
	)

	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// the <User> structure is only checked via ShouldBindJSON since not all
	// fields can be enforced centrally (eg. Password); only the fields needed
	// by this request are validated here
	data.LoginName = strings.TrimSpace(data.LoginName)
	data.Password = strings.TrimSpace(data.Password)
	data.EMailAddress = strings.TrimSpace(data.EMailAddress)

	// basically look for missing fields
	if len(data.LoginName) < 3 || len(data.Password) < 8 || len(data.EMailAddress) == 0 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// this also validates the user name, pwd etc.
	ID, err := environment.Env.UserModel.CreateUser(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{ID})
}

// Login a user
func Login(c *gin.Context) {

	var (
		err       error
		givenUser models.User
		dbUser    *models.User
		apiError  ErrorResponse
	)

	// use std struct
	if err = c.ShouldBindJSON(&givenUser); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// check for required fields
	givenUser.LoginName = strings.TrimSpace(givenUser.LoginName)
	givenUser.Password = strings.TrimSpace(givenUser.Password)
	if len(givenUser.LoginName) == 0 || len(givenUser.Password) == 0 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	dbUser, err = environment.Env.UserModel.GetUserByName(givenUser.LoginName)
	if err != nil {
		// user does not exist
		if err == models.ErrInvalidUser {
			// send custom error message
			apiError.Code = InvalidLogin
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusUnauthorized, apiError)
			return
		}
		// "real" error
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// passes the plain PWD from the login and the hashed one from the DB
	granted := environment.Env.UserModel.CheckPassword(givenUser.Password, *dbUser)
	if !granted {
		// send custom error message
		apiError.Code = InvalidLogin
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// create, register & save pair of AT/RT
	err = authentication.CreateTokens(c, dbUser.ID.Hex())
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	environment.Env.UserModel.SetLastSeen(dbUser.ID)

	// never send the password back
	dbUser.Password = ""

	c.JSON(http.StatusOK, &dbUser)
}

// Logout removes the access token from the registry
// (the API never reports an error so clients can always clean up their state)
func Logout(c *gin.Context) {

	au, _ := authentication.ExtractTokenMetadata(authentication.AT, c.Request)

	// in case of error the token might be expired
	if au != nil {
		_, _ = authentication.DeleteAuth(au.TokenUUID)
	}

	// "hard log-out" => AT, RT & cookie are removed => logged-out on all devices
	au, _ = authentication.ExtractTokenMetadata(authentication.RT, c.Request)
	if au != nil {
		_, _ = authentication.DeleteAuth(au.TokenUUID)
	}

	_ = helpers.DelCookie(c, os.Getenv("JWTCK_NAME"))

	c.Status(http.StatusOK)
}

// Refresh creates a new AT as long as there is still a valid RT
func Refresh(c *gin.Context) {

	var apiError ErrorResponse

	au, err := authentication.ExtractTokenMetadata(authentication.RT, c.Request)
	if err != nil {
		_, apiError = HandleError(err)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// is the RT still valid? (the middleware does that for ATs)
	err = authentication.TokenValid(authentication.RT, c.Request)
	if err != nil {
		_, apiError = HandleError(err)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// userID to issue a new token pair
	userID, err := authentication.FetchAuth(au)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	dbUser, err := environment.Env.UserModel.GetUserByID(userID)
	if err != nil {
		if err == models.ErrInvalidUser {
			status, apiError := HandleError(err)
			c.JSON(status, apiError)
			return
		}
		// "real" error
		c.Status(http.StatusInternalServerError) // make client say "please try again later"
		return
	}

	// if too many RTs (clients) are in circulation for the user, all of them
	// are removed, otherwise only the current one
	deleted, err := authentication.DeleteAuths(authentication.RT, userID, au.TokenUUID)
	if err != nil || deleted == 0 { // if anything goes wrong
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// create, register & save pair of AT/RT
	err = authentication.CreateTokens(c, userID)
	if err != nil {
		_, apiError = HandleError(err)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	environment.Env.UserModel.SetLastSeen(dbUser.ID)

	// never send the password back
	dbUser.Password = ""

	c.JSON(http.StatusOK, &dbUser)
}

// VerifyPassword is used whenever a password must be re-typed during a session
// (eg. changePassword or any actions that require increased security)
func VerifyPassword(c *gin.Context) {

	var (
		err       error
		givenUser models.User
		dbUser    *models.User
		apiError  ErrorResponse
	)

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// use std struct (reduced fieldset)
	if err = c.ShouldBindJSON(&givenUser); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	// check for required fields
	givenUser.LoginName = strings.TrimSpace(givenUser.LoginName)
	givenUser.Password = strings.TrimSpace(givenUser.Password)
	if len(givenUser.LoginName) == 0 || len(givenUser.Password) == 0 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Granted bool `json:"granted"`
	}{false}

	// load the profile via the ID from the token
	dbUser, err = environment.Env.UserModel.GetUserByID(userID)
	if err != nil {
		// user does not exist (return false)
		if err == models.ErrInvalidUser {
			c.JSON(http.StatusOK, res)
			return
		}
		// technical error
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// does the user name match the ID in the token?
	if givenUser.LoginName != dbUser.LoginName {
		c.JSON(http.StatusOK, res) // false (default)
		return
	}

	res.Granted = environment.Env.UserModel.CheckPassword(givenUser.Password, *dbUser)

	c.JSON(http.StatusOK, res)
}

// ChangePassword sets a new password
func ChangePassword(c *gin.Context) {

	var dbUser *models.User
	var apiError ErrorResponse

	// default auth-check
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// request data
	data := struct {
		LoginName   string `json:"loginName" binding:"required"`
		CurrentPWD  string `json:"currentPWD" binding:"required"`
		NewPassword string `json:"newPWD" binding:"required"`
	}{}

	// let the Gin framework validate the request
	if err := c.BindJSON(&data); err != nil {
		return // throws 400 - bad request
	}

	// simple cleansing
	data.LoginName = strings.TrimSpace(data.LoginName)
	data.CurrentPWD = strings.TrimSpace(data.CurrentPWD)
	data.NewPassword = strings.TrimSpace(data.NewPassword)

	// look for empty fields (Gin does not trim)
	if len(data.LoginName) == 0 || len(data.CurrentPWD) == 0 || len(data.NewPassword) < 8 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// re-load user's profile to perform additional security checks
	dbUser, err = environment.Env.UserModel.GetUserByID(userID)
	if err != nil {
		// user does not exist
		if err == models.ErrInvalidUser {
			apiError.Code = InvalidRequest
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusUnauthorized, apiError)
			return
		}
		// "real" error
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// as an extra-security measure, compare given user name with the one referenced in the cookie
	if data.LoginName != dbUser.LoginName {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	// check the current password (again)
	granted := environment.Env.UserModel.CheckPassword(data.CurrentPWD, *dbUser)
	if !granted {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnauthorized, apiError)
		return
	}

	err = environment.Env.UserModel.SetPassword(dbUser.ID, data.NewPassword)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
