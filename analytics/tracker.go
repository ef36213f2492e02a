package analytics

import (
	"context"
	"fmt"
	"opinify-api/client"
	"opinify-api/database"
	"opinify-api/helpers"
	"os"
	"sort"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
)

// Tracker collects usage events (poll visits and votes) in the
// analytics cache (influxDB). Everything here is best-effort and
// must never fail a user request.
type Tracker struct {
	influxClient influxdb2.Client
	VisitorAPI   database.InfluxAPI
	GetUserName  func(ID string) (string, error)
	Requests     *client.Registry
}

type Visit struct {
	VisitTS  time.Time `json:"visitTS"`
	PollID   string    `json:"pollID"`
	UserID   string    `json:"userID"`
	UserName string    `json:"userName"`
}

// SetConnection initializes the instance
func (t *Tracker) SetConnection(influxClient *influxdb2.Client) {
	t.influxClient = *influxClient
}

// SaveVisit stores event data in the analytics cache.
// clientIP is used to filter page refreshes via the request registry.
func (t *Tracker) SaveVisit(pollID string, userID string, clientIP string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// same client re-reading the same poll is a refresh, not a visit
	if t.Requests != nil && !t.Requests.Continue(clientIP, pollID) {
		return
	}

	// the risk of high series cardinality is accepted, since polls are what we're interested in
	// https://docs.influxdata.com/influxdb/v2.0/write-data/best-practices/resolve-high-cardinality/

	p := influxdb2.NewPoint(
		"visit",
		map[string]string{"pollId": pollID},
		map[string]interface{}{"userId": userID},
		time.Now())

	err := t.VisitorAPI.WriteAPI.WritePoint(context.Background(), p)
	if err != nil {
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
	}
}

// SaveVote stores a vote event; used for engagement statistics only,
// the authoritative counts live in the poll documents
func (t *Tracker) SaveVote(pollID string, userID string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	p := influxdb2.NewPoint(
		"vote",
		map[string]string{"pollId": pollID},
		map[string]interface{}{"userId": userID},
		time.Now())

	err := t.VisitorAPI.WriteAPI.WritePoint(context.Background(), p)
	if err != nil {
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
	}
}

// GetVisits counts the number of visits of a poll
// the value is "live" - meaning it's read from the analytics cache (influxDB)
// which is set to a maximum period (TTL) of 30 days
func (t *Tracker) GetVisits(pollID string, startDT time.Time) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and r["pollId"] == "%s")
		|> count()
		|> yield(name: "count")`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		pollID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// single record expected
	var res interface{}
	for result.Next() {
		res = result.Record().Value()
	}

	var cnt int64 = 0
	if res != nil {
		cnt = res.(int64)
	}

	return cnt, nil
}

// ListVisitors returns the 10 most recent visitors of a poll
// (only the last visit per user)
func (t *Tracker) ListVisitors(pollID string, startDT time.Time) ([]Visit, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and r["pollId"] == "%s")
		|> group(columns: ["_value"], mode:"by")
		|> max(column: "_time")
		|> sort(columns: ["_time"], desc: true)
		|> limit(n:10, offset: 0)`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339), // 2021-04-01T00:00:00Z
		pollID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var visit Visit
	var visits []Visit
	for result.Next() {
		visit.VisitTS = result.Record().Time()
		visit.PollID = pollID
		if result.Record().Value() == nil {
			visit.UserID = ""
			visit.UserName = ""
		} else {
			visit.UserID = result.Record().Value().(string)
			visit.UserName, _ = t.GetUserName(visit.UserID)
		}

		visits = append(visits, visit)
	}

	// the flux query is sorted, the slice arrives in map order though
	sort.Slice(visits, func(i, j int) bool {
		return visits[j].VisitTS.Before(visits[i].VisitTS)
	})

	return visits, nil
}
