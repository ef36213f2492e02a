package environment

import (
	"opinify-api/analytics"
	"opinify-api/client"
	"opinify-api/database"
	"opinify-api/mirror"
	"opinify-api/models"
	"os"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Tracker      *analytics.Tracker
	Requests     *client.Registry
	Mirror       *mirror.Outbox
	UserModel    models.UserModel
	PollModel    models.PollModel
	ChannelModel models.ChannelModel
}

// newEnv operates as the constructor to initialize the collection references (private)
func newEnv(mongoClient *mongo.Client, redisClient *redis.Client) *Environment {
	env := &Environment{}

	// request registry (page-refresh filter and monitoring)
	env.Requests = new(client.Registry)
	env.Requests.Initialize()

	// prepare analytics gathering (poll visits & votes)
	// always create the object so no further checking is needed in the models
	env.Tracker = new(analytics.Tracker)
	env.Tracker.SetConnection(database.GetInfluxConnection())
	if os.Getenv("USE_ANALYTICS") == "YES" {
		influxClient := *database.GetInfluxConnection()
		env.Tracker.VisitorAPI.WriteAPI = influxClient.WriteAPIBlocking(
			os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_VISITORS_BUCKET"))
		env.Tracker.VisitorAPI.QueryAPI = influxClient.QueryAPI(os.Getenv("ANALYTICS_ORG"))
	}
	env.Tracker.Requests = env.Requests

	// realtime mirror of the discussion channels (redis)
	mirrorService := mirror.NewService(redisClient)
	env.Mirror = mirror.NewOutbox(mirrorService.Apply)

	env.UserModel.Client = mongoClient
	env.UserModel.Collection = mongoClient.Database(os.Getenv("DB_NAME")).Collection("users")

	// inject user model function to analytics tracker after its initialization
	env.Tracker.GetUserName = env.UserModel.GetUserName

	env.ChannelModel.Client = mongoClient
	env.ChannelModel.Collection = mongoClient.Database(os.Getenv("DB_NAME")).Collection("channels")
	env.ChannelModel.GetUserName = env.UserModel.GetUserName
	env.ChannelModel.IncGroupsCount = env.UserModel.IncGroupsCount
	env.ChannelModel.Mirror = env.Mirror

	env.PollModel.Client = mongoClient
	env.PollModel.Collection = mongoClient.Database(os.Getenv("DB_NAME")).Collection("polls")
	// inject functions of the user model into the poll model
	env.PollModel.GetUserName = env.UserModel.GetUserName
	env.PollModel.IncPollsVoted = env.UserModel.IncPollsVoted
	// every new poll gets its discussion channel
	env.PollModel.CreateChannel = env.ChannelModel.ChannelForPoll

	return env
}

// Env is the singleton registry
var Env *Environment

// InitializeModels injects the database connections into the models
// (do not confuse with package init)
func InitializeModels() {
	Env = newEnv(database.GetConnection(), database.GetRedisConnection())
}
