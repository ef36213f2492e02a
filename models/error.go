package models

import (
	"errors"
)

// custom error types (generic types found in apperror package)

// user
var (
	ErrUserNameNotAvailable = errors.New("user name is not available")
	ErrEMailAddressTaken    = errors.New("email-address is already used")
	ErrInvalidUser          = errors.New("invalid user name or password")
	ErrInvalidPassword      = errors.New("password does not meet rules")
)

// poll
// transformed by controllers to 400-class responses
var (
	ErrPollTitleInvalid       = errors.New("title is required and limited to 100 characters")
	ErrPollDescriptionInvalid = errors.New("description is required and limited to 500 characters")
	ErrPollOptionsInvalid     = errors.New("at least two options with a text of 100 characters or less are required")
	ErrPollCategoryInvalid    = errors.New("category is limited to 50 characters")
	ErrPollTagInvalid         = errors.New("tags are limited to 50 characters")
	ErrPollExpiryInPast       = errors.New("expiration date must be in the future")
	ErrPollExpired            = errors.New("poll has expired")
	ErrAlreadyVoted           = errors.New("you have already voted on this poll")
	ErrInvalidOption          = errors.New("invalid option index")
)

// discussion channel
var (
	ErrChannelNameInvalid     = errors.New("channel name is required and limited to 100 characters")
	ErrChannelClosed          = errors.New("channel is not active")
	ErrChannelFull            = errors.New("channel has reached maximum participant limit")
	ErrNotParticipant         = errors.New("user is not a participant in this channel")
	ErrMessageInvalid         = errors.New("message content is required and limited to 1000 characters")
	ErrMaxParticipantsInvalid = errors.New("participant limit must be between 1 and 100")
)
