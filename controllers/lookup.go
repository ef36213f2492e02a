package controllers

import (
	"net/http"
	"opinify-api/lookups"

	"github.com/gin-gonic/gin"
)

// lookupType represents a code domain sent to clients
type lookupType struct {
	Name   string        `json:"lookupType"`
	Values []lookupValue `json:"values"`
}

type lookupValue struct {
	Code int32  `json:"code"`
	Text string `json:"text"`
}

// ListLookups delivers the code domains so clients can render texts
func ListLookups(c *gin.Context) {

	data := []lookupType{
		{
			Name: lookups.LookupType(lookups.LTuserRole),
			Values: []lookupValue{
				{lookups.UserRoleGuest, lookups.UserRole(lookups.UserRoleGuest)},
				{lookups.UserRoleMember, lookups.UserRole(lookups.UserRoleMember)},
				{lookups.UserRoleAdmin, lookups.UserRole(lookups.UserRoleAdmin)},
			},
		},
		{
			Name: lookups.LookupType(lookups.LTpollStatus),
			Values: []lookupValue{
				{lookups.PollStatusActive, lookups.PollStatus(lookups.PollStatusActive)},
				{lookups.PollStatusExpired, lookups.PollStatus(lookups.PollStatusExpired)},
				{lookups.PollStatusDeleted, lookups.PollStatus(lookups.PollStatusDeleted)},
			},
		},
		{
			Name: lookups.LookupType(lookups.LTchannelStatus),
			Values: []lookupValue{
				{lookups.ChannelStatusOpen, lookups.ChannelStatus(lookups.ChannelStatusOpen)},
				{lookups.ChannelStatusClosed, lookups.ChannelStatus(lookups.ChannelStatusClosed)},
			},
		},
	}

	c.JSON(http.StatusOK, newResponse(data))
}
