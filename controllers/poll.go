package controllers

import (
	"net/http"
	"opinify-api/apperror"
	"opinify-api/authentication"
	"opinify-api/environment"
	"opinify-api/models"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// AddPoll creates a new poll (and its paired discussion channel)
func AddPoll(c *gin.Context) {

	var (
		err      error
		data     models.Poll
		apiError ErrorResponse
	)

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// use "shouldBind" not all fields are required in this context
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusBadRequest, apiError)
		return
	}

	// validate request
	poll, err := environment.Env.PollModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	poll.CreatedID = models.ObjectID(userID)
	poll.CreatedName, err = environment.Env.UserModel.GetUserName(userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	id, err := environment.Env.PollModel.CreatePoll(poll)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, newResponse(Created{id}))
}

// ListPolls returns the latest polls
// format => http://localhost:3000/polls?category=environment
func ListPolls(c *gin.Context) {

	// service is public, members additionally receive their voting state
	userID, _ := authentication.Authenticate(c.Request)

	search := new(models.PollSearch)
	search.UserID = userID
	search.Category = c.Query("category")

	polls, err := environment.Env.PollModel.SearchPolls(search)
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			c.JSON(http.StatusOK, newResponse([]models.PollListItem{}))
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(polls))
}

// ListPollsByUser returns the polls created by the given user
func ListPollsByUser(c *gin.Context) {

	userID, _ := authentication.Authenticate(c.Request)

	search := new(models.PollSearch)
	search.UserID = userID
	search.CreatorID = c.Param("userId")

	polls, err := environment.Env.PollModel.SearchPolls(search)
	if err != nil {
		if err == apperror.ErrNoData {
			c.JSON(http.StatusOK, newResponse([]models.PollListItem{}))
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(polls))
}

// ListPollsByCategory returns the polls of a category
func ListPollsByCategory(c *gin.Context) {

	userID, _ := authentication.Authenticate(c.Request)

	search := new(models.PollSearch)
	search.UserID = userID
	search.Category = c.Param("category")

	polls, err := environment.Env.PollModel.SearchPolls(search)
	if err != nil {
		if err == apperror.ErrNoData {
			c.JSON(http.StatusOK, newResponse([]models.PollListItem{}))
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(polls))
}

// NearbyPolls returns polls around a location
// format => http://localhost:3000/polls/nearby?lat=47.36&lng=8.55&radius=10
func NearbyPolls(c *gin.Context) {

	var apiError ErrorResponse

	userID, _ := authentication.Authenticate(c.Request)

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusBadRequest, apiError)
		return
	}

	// radius in km, default 10
	radius := 10.0
	if r := c.Query("radius"); r != "" {
		var err error
		radius, err = strconv.ParseFloat(r, 64)
		if err != nil || radius <= 0 {
			apiError.Code = InvalidRequest
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusBadRequest, apiError)
			return
		}
	}

	polls, err := environment.Env.PollModel.NearbyPolls(lat, lng, radius, userID)
	if err != nil {
		if err == apperror.ErrNoData {
			c.JSON(http.StatusOK, newResponse([]models.PollListItem{}))
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(polls))
}

// GetPoll returns the specified poll
func GetPoll(c *gin.Context) {

	// no error checking because it's optional (voting state only)
	userID, _ := authentication.Authenticate(c.Request)

	var id = c.Param("id")

	poll, err := environment.Env.PollModel.GetPoll(id, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// count the read as a visit (page refreshes are filtered by the registry)
	environment.Env.Tracker.SaveVisit(id, userID, c.ClientIP())

	c.JSON(http.StatusOK, newResponse(poll))
}

// CastVote registers a user's vote on a poll option
func CastVote(c *gin.Context) {

	var apiError ErrorResponse

	// for enhanced security, read user from token
	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	data := struct {
		OptionIndex *int32 `json:"optionIndex" binding:"required"`
	}{}

	// pointer so index 0 passes the required-binding
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusBadRequest, apiError)
		return
	}

	poll, err := environment.Env.PollModel.CastVote(id, userID, *data.OptionIndex)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	environment.Env.Tracker.SaveVote(id, userID)

	c.JSON(http.StatusOK, newResponse(poll))
}

// DeletePoll removes a poll; restricted to its creator
func DeletePoll(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	err = environment.Env.PollModel.DeletePoll(id, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(nil))
}

// GetPollVisits returns the "live" visit count of a poll
// format => http://localhost:3000/polls/:id/visits?startDT=2026-08-20
func GetPollVisits(c *gin.Context) {

	var (
		err      error
		apiError ErrorResponse
	)

	var id = c.Param("id")

	var startDT time.Time

	startStr := c.Query("startDT")
	if startStr == "" {
		// default: 7 days back (starting at 00:00:00)
		startDT = time.Now().AddDate(0, 0, -7)
		startDT = time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, startDT.UTC().Location())
	} else {
		startDT, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			apiError.Code = InvalidRequest
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusBadRequest, apiError)
			return
		}
	}

	visits, err := environment.Env.Tracker.GetVisits(id, startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Visits int64 `json:"visits"`
	}{visits}

	c.JSON(http.StatusOK, newResponse(res))
}

// ListPollVisitors returns the most recent visitors of a poll
// format => http://localhost:3000/polls/:id/visitors?startDT=2026-08-20
func ListPollVisitors(c *gin.Context) {

	var (
		err      error
		apiError ErrorResponse
	)

	// visitor identities are only shown to logged-in members
	_, err = authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	var startDT time.Time

	startStr := c.Query("startDT")
	if startStr == "" {
		// default: 7 days back (starting at 00:00:00)
		startDT = time.Now().AddDate(0, 0, -7)
		startDT = time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, startDT.UTC().Location())
	} else {
		startDT, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			apiError.Code = InvalidRequest
			apiError.Message = apiError.String(apiError.Code)
			c.JSON(http.StatusBadRequest, apiError)
			return
		}
	}

	visitors, err := environment.Env.Tracker.ListVisitors(id, startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(visitors))
}
