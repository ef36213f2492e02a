package main

import (
	"fmt"
	"opinify-api/authentication"
	"opinify-api/controllers"
	"opinify-api/middleware"
	"os"
)

func handleRequests() {
	router.Use(middleware.CORSMiddleware())

	router.GET("/lookups", controllers.ListLookups)

	// auth-related
	router.POST("/login", controllers.Login)
	router.POST("/logout", authentication.TokenAuthMiddleware(), controllers.Logout)
	router.POST("/refresh", controllers.Refresh) // no middleware, the at may be expired here
	router.POST("/register", controllers.Register)

	router.POST("/user/exists", controllers.UserExists)
	router.POST("/email/exists", controllers.EMailExists)

	// user-mgmt
	router.GET("/users/:id", authentication.TokenAuthMiddleware(), controllers.GetUser)

	// polls
	// GET has no BODY (Go/Gin & Postman support it, Angular does not) - hence parameters
	router.GET("/polls", controllers.ListPolls)
	router.GET("/polls/nearby", controllers.NearbyPolls)
	router.GET("/polls/user/:userId", controllers.ListPollsByUser)
	router.GET("/polls/category/:category", controllers.ListPollsByCategory)
	router.GET("/polls/:id", controllers.GetPoll)
	router.POST("/polls", authentication.TokenAuthMiddleware(), controllers.AddPoll)
	router.POST("/polls/:id/vote", authentication.TokenAuthMiddleware(), controllers.CastVote)
	router.DELETE("/polls/:id", authentication.TokenAuthMiddleware(), controllers.DeletePoll)
	// statistics
	router.GET("/polls/:id/visits", controllers.GetPollVisits) // visits of the last 7 days "hot"
	router.GET("/polls/:id/visitors", authentication.TokenAuthMiddleware(), controllers.ListPollVisitors)

	// discussion channels
	router.GET("/discussions", controllers.ListChannels)
	router.GET("/discussions/:id", controllers.GetChannel)
	router.POST("/discussions", authentication.TokenAuthMiddleware(), controllers.AddChannel)
	router.POST("/discussions/:id/join", authentication.TokenAuthMiddleware(), controllers.JoinChannel)
	router.POST("/discussions/:id/leave", authentication.TokenAuthMiddleware(), controllers.LeaveChannel)
	router.GET("/discussions/:id/messages", authentication.TokenAuthMiddleware(), controllers.ListMessages)
	router.POST("/discussions/:id/messages", authentication.TokenAuthMiddleware(), controllers.SendMessage)
	router.POST("/discussions/:id/read", authentication.TokenAuthMiddleware(), controllers.MarkMessageRead)
	router.POST("/discussions/:id/close", authentication.TokenAuthMiddleware(), controllers.CloseChannel)

	// system tools
	router.GET("/monitor/requests/count", authentication.TokenAuthMiddleware(), controllers.CountRequests)
	router.GET("/monitor/requests/dump", authentication.TokenAuthMiddleware(), controllers.DumpRequests)
	router.POST("/monitor/requests/flush", authentication.TokenAuthMiddleware(), controllers.FlushRequests)

	switch os.Getenv("APP_ENV") {
	case "DEV":
		router.Run(":" + os.Getenv("API_PORT"))
	case "PRD":
		router.RunTLS(":"+os.Getenv("API_PORT"), os.Getenv("APP_CERTFILE"), os.Getenv("APP_KEYFILE"))
	default:
		panic(fmt.Errorf("APP_ENV not set"))
	}
}
