package models

import (
	"context"
	"fmt"
	"opinify-api/apperror"
	"opinify-api/helpers"
	"opinify-api/lookups"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// field limits according to the data model
const (
	MaxPollTitleLength       = 100
	MaxPollDescriptionLength = 500
	MaxPollOptionLength      = 100
	MaxPollCategoryLength    = 50
	MaxPollTagLength         = 50
	MinPollOptions           = 2
)

// PollOption is one of the enumerated answers with its tally
type PollOption struct {
	Text  string `json:"text" bson:"text" binding:"required"`
	Count int32  `json:"count" bson:"count"`
}

// PollVote records a single user's choice (one record per user and poll)
type PollVote struct {
	UserID      primitive.ObjectID `json:"userID" bson:"userID"`
	OptionIndex int32              `json:"optionIndex" bson:"optionIndex"`
	VoteTS      time.Time          `json:"voteTS" bson:"voteTS"`
}

// Poll is the "interface" used for client communication
type Poll struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Title       string             `json:"title" bson:"title" binding:"required"`
	Description string             `json:"description" bson:"description" binding:"required"`
	Options     []PollOption       `json:"options" bson:"options" binding:"required"`
	CreatedID   primitive.ObjectID `json:"createdID" bson:"createdID"`
	CreatedName string             `json:"createdName" bson:"createdName"`
	CreatedTS   time.Time          `json:"createdTS" bson:"-"` // read from Mongo's ObjectID
	Location    GeoPoint           `json:"location" bson:"location"`
	ExpiresAt   time.Time          `json:"expiresAt" bson:"expiresAt" binding:"required"`
	TotalVotes  int32              `json:"totalVotes" bson:"totalVotes"`
	StatusCode  int32              `json:"statusCode" bson:"statusCD"`
	StatusText  string             `json:"statusText" bson:"-"`
	Category    string             `json:"category,omitempty" bson:"category,omitempty"`
	Tags        []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Votes       []PollVote         `json:"votes" bson:"votes"`
	HasVoted    bool               `json:"hasVoted" bson:"-"` // resolved for the requesting user
}

// PollListItem is the reduced/simplified model used for listings
type PollListItem struct {
	ID          primitive.ObjectID `json:"id"`
	CreatedTS   time.Time          `json:"createdTS"`
	CreatedID   primitive.ObjectID `json:"createdID"`
	CreatedName string             `json:"createdName"`
	Title       string             `json:"title"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	TotalVotes  int32              `json:"totalVotes"`
	StatusCode  int32              `json:"statusCode"`
	StatusText  string             `json:"statusText"`
	Category    string             `json:"category,omitempty"`
	HasVoted    bool               `json:"hasVoted"`
}

// PollSearch is passed as the search params
type PollSearch struct {
	UserID    string // resolves hasVoted; empty for anonymous requests
	CreatorID string
	Category  string
}

// PollModel provides the logic to the interface and access to the database
type PollModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// information owned by the user model is referenced here
	// so the controllers don't have to do the plumbing
	GetUserName    func(ID string) (string, error)
	IncPollsVoted  func(userID primitive.ObjectID)
	CreateChannel  func(poll *Poll) (string, error) // pairs every new poll with a discussion channel
}

// Validate checks given values and sets defaults where applicable (immutable)
func (m PollModel) Validate(poll Poll) (*Poll, error) {

	cleaned := poll

	cleaned.Title = strings.TrimSpace(cleaned.Title)
	if cleaned.Title == "" || len(cleaned.Title) > MaxPollTitleLength {
		return nil, ErrPollTitleInvalid
	}

	cleaned.Description = strings.TrimSpace(cleaned.Description)
	if cleaned.Description == "" || len(cleaned.Description) > MaxPollDescriptionLength {
		return nil, ErrPollDescriptionInvalid
	}

	if len(cleaned.Options) < MinPollOptions {
		return nil, ErrPollOptionsInvalid
	}
	for i := range cleaned.Options {
		cleaned.Options[i].Text = strings.TrimSpace(cleaned.Options[i].Text)
		if cleaned.Options[i].Text == "" || len(cleaned.Options[i].Text) > MaxPollOptionLength {
			return nil, ErrPollOptionsInvalid
		}
	}

	cleaned.Category = strings.TrimSpace(cleaned.Category)
	if len(cleaned.Category) > MaxPollCategoryLength {
		return nil, ErrPollCategoryInvalid
	}

	for i := range cleaned.Tags {
		cleaned.Tags[i] = strings.TrimSpace(cleaned.Tags[i])
		if len(cleaned.Tags[i]) > MaxPollTagLength {
			return nil, ErrPollTagInvalid
		}
	}

	// the expiry must be strictly in the future at creation time
	if !cleaned.ExpiresAt.After(time.Now()) {
		return nil, ErrPollExpiryInPast
	}

	return &cleaned, nil
}

// IsExpired compares the expiry to the current time; it does not mutate the status
func (p *Poll) IsExpired() bool {
	return p.ExpiresAt.Before(time.Now())
}

// refreshStatus applies the lazy active->expired transition on the loaded
// document; returns true if the status actually changed (idempotent)
func (p *Poll) refreshStatus() bool {
	if p.StatusCode == lookups.PollStatusActive && p.IsExpired() {
		p.StatusCode = lookups.PollStatusExpired
		return true
	}
	return false
}

// CheckVote verifies the vote preconditions on a loaded document, in the
// order the API promises them: expiry, duplicate, option range
func (p *Poll) CheckVote(userID primitive.ObjectID, optionIndex int32) error {

	if p.StatusCode != lookups.PollStatusActive || p.IsExpired() {
		return ErrPollExpired
	}

	for i := range p.Votes {
		if p.Votes[i].UserID == userID {
			return ErrAlreadyVoted
		}
	}

	if optionIndex < 0 || int(optionIndex) >= len(p.Options) {
		return ErrInvalidOption
	}

	return nil
}

// applyVote mutates the loaded document the same way the storage update does,
// so the caller can return the new state without a second read
func (p *Poll) applyVote(userID primitive.ObjectID, optionIndex int32, ts time.Time) {
	p.Votes = append(p.Votes, PollVote{UserID: userID, OptionIndex: optionIndex, VoteTS: ts})
	p.Options[optionIndex].Count++
	p.TotalVotes++
}

// voterOf reports whether the given user has a vote record on the poll
func (p *Poll) voterOf(userID primitive.ObjectID) bool {
	for i := range p.Votes {
		if p.Votes[i].UserID == userID {
			return true
		}
	}
	return false
}

// CreatePoll adds a new poll and its paired discussion channel
// (validated by the controller)
func (m PollModel) CreatePoll(poll *Poll) (string, error) {

	// set "system-fields"
	poll.ID = primitive.NewObjectID()
	poll.TotalVotes = 0
	poll.StatusCode = lookups.PollStatusActive
	poll.Votes = []PollVote{}
	for i := range poll.Options {
		poll.Options[i].Count = 0
	}
	if poll.Location.Type == "" {
		poll.Location.Type = "Point"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	res, err := m.Collection.InsertOne(ctx, poll)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	// every poll gets exactly one discussion channel
	if m.CreateChannel != nil {
		if _, err := m.CreateChannel(poll); err != nil {
			// the poll itself is in place; report the partial failure
			return res.InsertedID.(primitive.ObjectID).Hex(), helpers.WrapError(err, helpers.FuncName())
		}
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetPoll returns one poll; the stored status is corrected
// on the fly when the expiry has passed (load-then-save)
func (m PollModel) GetPoll(pollID string, userID string) (*Poll, error) {

	id, err := primitive.ObjectIDFromHex(pollID)
	if err != nil {
		return nil, apperror.ErrNoData
	}

	data := Poll{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if data.refreshStatus() {
		m.persistStatus(&data)
	}

	if userID != "" {
		data.HasVoted = data.voterOf(helpers.ObjectID(userID))
	}

	addPollLookups(&data)

	return &data, nil
}

// SearchPolls lists polls, optionally restricted to a creator or a category,
// newest first
func (m PollModel) SearchPolls(search *PollSearch) ([]PollListItem, error) {

	filter := bson.D{}
	if search.CreatorID != "" {
		filter = append(filter, bson.E{Key: "createdID", Value: helpers.ObjectID(search.CreatorID)})
	}
	if search.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: search.Category})
	}

	// newest first; the creation time lives in the ObjectID
	sort := bson.D{{Key: "_id", Value: -1}}
	opts := options.Find().SetSort(sort).SetLimit(50)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var polls []Poll
	err = cursor.All(ctx, &polls)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if polls == nil {
		return nil, apperror.ErrNoData
	}

	return m.toListItems(polls, search.UserID), nil
}

// NearbyPolls returns polls whose location lies within the given radius (km);
// uses the 2dsphere index on the location field
func (m PollModel) NearbyPolls(latitude float64, longitude float64, radiusKM float64, userID string) ([]PollListItem, error) {

	filter := bson.D{
		{Key: "location", Value: bson.D{
			{Key: "$nearSphere", Value: bson.D{
				{Key: "$geometry", Value: NewGeoPoint(latitude, longitude)},
				{Key: "$maxDistance", Value: radiusKM * 1000}, // meters
			}},
		}},
	}

	opts := options.Find().SetLimit(50)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var polls []Poll
	err = cursor.All(ctx, &polls)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if polls == nil {
		return nil, apperror.ErrNoData
	}

	return m.toListItems(polls, userID), nil
}

// CastVote applies exactly one vote from one user to one poll.
// The duplicate guard is part of the storage update itself: the filter only
// matches while no vote record for this user exists, so two concurrent
// attempts cannot both count (the loser sees MatchedCount == 0).
func (m PollModel) CastVote(pollID string, userID string, optionIndex int32) (*Poll, error) {

	poll, err := m.GetPoll(pollID, "")
	if err != nil {
		return nil, err
	}

	userOID := helpers.ObjectID(userID)
	if userOID == primitive.NilObjectID {
		return nil, ErrInvalidUser
	}

	if err := poll.CheckVote(userOID, optionIndex); err != nil {
		return nil, err
	}

	now := time.Now()

	filter := bson.D{
		{Key: "_id", Value: poll.ID},
		{Key: "votes.userID", Value: bson.D{{Key: "$ne", Value: userOID}}},
	}

	fields := bson.D{
		{Key: "$push", Value: bson.D{
			{Key: "votes", Value: PollVote{UserID: userOID, OptionIndex: optionIndex, VoteTS: now}},
		}},
		{Key: "$inc", Value: bson.D{
			{Key: fmt.Sprintf("options.%d.count", optionIndex), Value: 1},
			{Key: "totalVotes", Value: 1},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	result, err := m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if result.MatchedCount == 0 {
		// lost against a concurrent vote of the same user
		return nil, ErrAlreadyVoted
	}

	// counters are derived values; losing an increment is acceptable
	if m.IncPollsVoted != nil {
		m.IncPollsVoted(userOID)
	}

	poll.applyVote(userOID, optionIndex, now)
	poll.HasVoted = true
	addPollLookups(poll)

	return poll, nil
}

// DeletePoll removes a poll; restricted to its creator.
// Vote history inside the document disappears with it, the paired channel
// remains untouched.
func (m PollModel) DeletePoll(pollID string, userID string) error {

	poll, err := m.GetPoll(pollID, "")
	if err != nil {
		return err
	}

	if poll.CreatedID != helpers.ObjectID(userID) {
		return apperror.ErrDenied
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	_, err = m.Collection.DeleteOne(ctx, bson.M{"_id": poll.ID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// SweepExpired marks all overdue active polls as expired in one statement;
// called periodically so the status is queryable without touching documents
func (m PollModel) SweepExpired() (int64, error) {

	filter := bson.D{
		{Key: "expiresAt", Value: bson.D{{Key: "$lt", Value: time.Now()}}},
		{Key: "statusCD", Value: lookups.PollStatusActive},
	}
	fields := bson.D{
		{Key: "$set", Value: bson.D{{Key: "statusCD", Value: lookups.PollStatusExpired}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	result, err := m.Collection.UpdateMany(ctx, filter, fields)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return result.ModifiedCount, nil
}

// persistStatus writes the corrected status back; fire & forget since the
// next write or the sweep will repeat the correction anyway
func (m PollModel) persistStatus(poll *Poll) {

	filter := bson.D{{Key: "_id", Value: poll.ID}}
	fields := bson.D{
		{Key: "$set", Value: bson.D{{Key: "statusCD", Value: poll.StatusCode}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	_, _ = m.Collection.UpdateOne(ctx, filter, fields)
}

// copy data to the reduced list-struct
func (m PollModel) toListItems(polls []Poll, userID string) []PollListItem {

	userOID := primitive.NilObjectID
	if userID != "" {
		userOID = helpers.ObjectID(userID)
	}

	var pollList []PollListItem
	var item PollListItem

	for i := range polls {
		polls[i].refreshStatus() // view only; the sweep persists it

		item.ID = polls[i].ID
		item.CreatedTS = primitive.ObjectID.Timestamp(polls[i].ID)
		item.CreatedID = polls[i].CreatedID
		item.CreatedName = polls[i].CreatedName
		item.Title = polls[i].Title
		item.ExpiresAt = polls[i].ExpiresAt
		item.TotalVotes = polls[i].TotalVotes
		item.StatusCode = polls[i].StatusCode
		item.StatusText = lookups.PollStatus(polls[i].StatusCode)
		item.Category = polls[i].Category
		item.HasVoted = userOID != primitive.NilObjectID && polls[i].voterOf(userOID)

		pollList = append(pollList, item)
	}

	return pollList
}

// internal helpers
func addPollLookups(poll *Poll) *Poll {
	poll.StatusText = lookups.PollStatus(poll.StatusCode)
	poll.CreatedTS = primitive.ObjectID.Timestamp(poll.ID)
	return poll
}
