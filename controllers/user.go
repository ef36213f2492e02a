package controllers

import (
	"net/http"
	"opinify-api/authentication"
	"opinify-api/environment"
	"opinify-api/models"

	"github.com/gin-gonic/gin"
)

// GetUser returns a user's profile
func GetUser(c *gin.Context) {

	// requesting user must be logged-in, any profile may be read
	_, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	user, err := environment.Env.UserModel.GetUserByID(id)
	if err != nil {
		// an unknown profile is a 404 here, not a login problem
		if err == models.ErrInvalidUser {
			var apiError ErrorResponse
			apiError.Code = NotFound
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusNotFound, apiError)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// do not expose the password hash
	user.Password = ""

	c.JSON(http.StatusOK, newResponse(user))
}
