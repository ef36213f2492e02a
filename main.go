package main

import (
	"fmt"
	"log"
	"opinify-api/authentication"
	"opinify-api/database"
	"opinify-api/environment"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	router = gin.Default()
)

// called BEFORE main; note that the order of package inits is undefined
func init() {
	// load config
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func main() {
	// connect to the main database (mongoDB)
	err := database.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseConnection()

	// connect to the JWT store (redis)
	err = authentication.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer authentication.CloseConnection()

	// connect to the channel mirror store (redis)
	err = database.OpenRedisConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseRedisConnection()

	// connect to the analytics store (influxDB) - optional
	if os.Getenv("USE_ANALYTICS") == "YES" {
		err = database.OpenInfluxConnection()
		if err != nil {
			log.Fatal(err)
		}
		defer database.CloseInfluxConnection()
	}

	// initialize the models
	environment.InitializeModels()

	// replay channel mutations into the mirror
	environment.Env.Mirror.Start()
	defer environment.Env.Mirror.Stop()

	startExpirySweep()
	startRegistryFlush()

	fmt.Println("Opinify API running...")
	handleRequests()
}

// startExpirySweep marks overdue polls in the background so they become
// queryable by status even when nobody reads them (disabled when 0)
func startExpirySweep() {

	minutes, err := strconv.Atoi(os.Getenv("EXPIRY_SWEEP_MINUTES"))
	if err != nil || minutes <= 0 {
		log.Println("poll expiry sweep disabled")
		return
	}

	ticker := time.NewTicker(time.Duration(minutes) * time.Minute)
	go func() {
		for range ticker.C {
			cnt, err := environment.Env.PollModel.SweepExpired()
			if err != nil {
				log.Println(err)
				continue
			}
			if cnt > 0 {
				log.Printf("%v poll(s) marked expired\n", cnt)
			}
		}
	}()
}

// startRegistryFlush periodically evicts stale entries from the request registry
func startRegistryFlush() {

	ticker := time.NewTicker(15 * time.Minute)
	go func() {
		for range ticker.C {
			environment.Env.Requests.Flush()
		}
	}()
}
