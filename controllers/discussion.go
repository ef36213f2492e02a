package controllers

import (
	"net/http"
	"opinify-api/apperror"
	"opinify-api/authentication"
	"opinify-api/environment"
	"opinify-api/models"

	"github.com/gin-gonic/gin"
)

// AddChannel creates a stand-alone discussion channel
// (the channel paired with a poll is created automatically)
func AddChannel(c *gin.Context) {

	var (
		err      error
		data     models.Channel
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
	channel, err := environment.Env.ChannelModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	channel.CreatedID = models.ObjectID(userID)
	channel.CreatedName, err = environment.Env.UserModel.GetUserName(userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	id, err := environment.Env.ChannelModel.CreateChannel(channel)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, newResponse(Created{id}))
}

// ListChannels returns channels, newest activity first
// format => http://localhost:3000/discussions?pollId=...&active=true
func ListChannels(c *gin.Context) {

	userID, _ := authentication.Authenticate(c.Request)

	search := new(models.ChannelSearch)
	search.PollID = c.Query("pollId")
	search.ActiveOnly = c.Query("active") == "true"

	// "mine" restricts the list to the caller's memberships
	if c.Query("mine") == "true" && userID != "" {
		search.ParticipantID = userID
	}

	channels, err := environment.Env.ChannelModel.SearchChannels(search)
	if err != nil {
		if err == apperror.ErrNoData {
			c.JSON(http.StatusOK, newResponse([]models.ChannelListItem{}))
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(channels))
}

// GetChannel returns one channel including its message history
func GetChannel(c *gin.Context) {

	var id = c.Param("id")

	channel, err := environment.Env.ChannelModel.GetChannel(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(channel))
}

// JoinChannel adds the caller to the channel's roster
func JoinChannel(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	joined, err := environment.Env.ChannelModel.Join(id, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// joined=false means the user already was a participant (no-op)
	res := struct {
		Joined bool `json:"joined"`
	}{joined}

	c.JSON(http.StatusOK, newResponse(res))
}

// LeaveChannel removes the caller from the channel's roster
func LeaveChannel(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	left, err := environment.Env.ChannelModel.Leave(id, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	res := struct {
		Left bool `json:"left"`
	}{left}

	c.JSON(http.StatusOK, newResponse(res))
}

// SendMessage posts a message into a channel
func SendMessage(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	data := struct {
		Content string `json:"content" binding:"required"`
	}{}

	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusBadRequest, apiError)
		return
	}

	message, err := environment.Env.ChannelModel.SendMessage(id, userID, data.Content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, newResponse(message))
}

// ListMessages returns the message history of a channel (participants only)
func ListMessages(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	channel, err := environment.Env.ChannelModel.GetChannel(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	if !channel.IsParticipant(models.ObjectID(userID)) {
		status, apiError := HandleError(models.ErrNotParticipant)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(channel.Messages))
}

// MarkMessageRead records a read-receipt for the caller
func MarkMessageRead(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	data := struct {
		MessageID string `json:"messageId" binding:"required"`
	}{}

	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusBadRequest, apiError)
		return
	}

	ok, err := environment.Env.ChannelModel.MarkMessageRead(id, userID, data.MessageID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	res := struct {
		Marked bool `json:"marked"`
	}{ok}

	c.JSON(http.StatusOK, newResponse(res))
}

// CloseChannel deactivates a channel; restricted to its creator
func CloseChannel(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var id = c.Param("id")

	err = environment.Env.ChannelModel.CloseChannel(id, userID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, newResponse(nil))
}
