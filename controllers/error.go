package controllers

import (
	"fmt"
	"net/http"
	"opinify-api/apperror"
	"opinify-api/models"
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int32  `json:"code"`
	Message string `json:"error"`
}

// HandleError encodes the std ErrorResponse.
// Model sentinels keep their own message; generic codes use the registry text.
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {

	apiError.Success = false

	if err == nil {
		apiError.Code = 0
		apiError.Message = ""

		return 0, apiError
	}

	fmt.Println(err)
	switch err {
	// system
	case apperror.ErrNoData:
		apiError.Code = NotFound
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusNotFound
	case apperror.ErrMultipleRecords:
		apiError.Code = MultipleRecords
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	case apperror.ErrRecordChanged:
		apiError.Code = RecordChanged
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	// permissions
	case apperror.ErrDenied:
		apiError.Code = ActionDenied
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusForbidden
	// user
	case models.ErrUserNameNotAvailable:
		apiError.Code = UserNameTaken
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrEMailAddressTaken:
		apiError.Code = EMailAddressTaken
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrInvalidUser:
		apiError.Code = InvalidLogin
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusUnauthorized
	case models.ErrInvalidPassword:
		apiError.Code = InvalidPassword
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	// poll validation
	case models.ErrPollTitleInvalid,
		models.ErrPollDescriptionInvalid,
		models.ErrPollOptionsInvalid,
		models.ErrPollCategoryInvalid,
		models.ErrPollTagInvalid,
		models.ErrPollExpiryInPast:
		apiError.Code = PollInvalid
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	// voting
	case models.ErrPollExpired:
		apiError.Code = PollExpired
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrAlreadyVoted:
		apiError.Code = AlreadyVoted
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrInvalidOption:
		apiError.Code = InvalidOption
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	// discussion channel
	case models.ErrChannelNameInvalid,
		models.ErrMaxParticipantsInvalid,
		models.ErrMessageInvalid:
		apiError.Code = ChannelInvalid
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrChannelClosed:
		apiError.Code = ChannelClosed
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrChannelFull:
		apiError.Code = ChannelFull
		apiError.Message = err.Error()
		httpStatus = http.StatusBadRequest
	case models.ErrNotParticipant:
		apiError.Code = NotParticipant
		apiError.Message = err.Error()
		httpStatus = http.StatusForbidden
	default:
		apiError.Code = SystemError
		apiError.Message = apiError.String(apiError.Code)
		httpStatus = http.StatusInternalServerError
	}
	return httpStatus, apiError
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	InvalidLogin
	// generic system
	NotFound
	MultipleRecords
	RecordChanged
	ActionDenied
	// user
	UserNameTaken
	EMailAddressTaken
	InvalidPassword
	// poll
	PollInvalid
	PollExpired
	AlreadyVoted
	InvalidOption
	// discussion channel
	ChannelInvalid
	ChannelClosed
	ChannelFull
	NotParticipant
	SystemError = 99999
)

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common (system)
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case InvalidLogin:
		msg = "invalid user name or password"
	case NotFound:
		msg = "record not found"
	case MultipleRecords:
		msg = "multiple records found"
	case RecordChanged:
		msg = "record changed by another user"
	case ActionDenied:
		msg = "update/delete action not allowed"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}
