package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// shared connection (private to members of this package)
var client *mongo.Client

// OpenConnection to the database
func OpenConnection() error {
	var err error

	conStr := fmt.Sprintf("mongodb://%s:%s@%s:%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"))

	client, err = mongo.NewClient(options.Client().ApplyURI(conStr))
	if err != nil {
		return err
	}

	// every caller will create its own context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds
	err = client.Connect(ctx)
	if err != nil {
		return err
	}

	// make sure a connection has actually been made
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return err
	}

	return ensureIndexes()
}

// CloseConnection closes the connection to the DB (when the service shuts down)
func CloseConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds
	return client.Disconnect(ctx)
}

// GetConnection returns a reference to the shared connection
func GetConnection() *mongo.Client {
	return client
}

// ensureIndexes creates the indexes the models rely on
// (unique user name/email, poll geo queries, channel listings)
func ensureIndexes() error {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	db := client.Database(os.Getenv("DB_NAME"))

	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "eMail", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return err
	}

	polls := []mongo.IndexModel{
		{
			// 2dsphere enables $nearSphere on the GeoJSON location
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}, {Key: "statusCD", Value: 1}},
		},
	}
	if _, err := db.Collection("polls").Indexes().CreateMany(ctx, polls); err != nil {
		return err
	}

	channels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pollID", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastActivity", Value: -1}},
		},
	}
	_, err := db.Collection("channels").Indexes().CreateMany(ctx, channels)
	return err
}
