package models

import (
	"context"
	"opinify-api/apperror"
	"opinify-api/helpers"
	"opinify-api/lookups"
	"opinify-api/mirror"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// field limits according to the data model
const (
	MaxChannelNameLength        = 100
	MaxChannelDescriptionLength = 500
	MaxMessageLength            = 1000
	DefaultMaxParticipants      = 50
	HardMaxParticipants         = 100
)

// Message is embedded in its channel; readBy always contains the sender
type Message struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id"`
	SenderID   primitive.ObjectID   `json:"senderID" bson:"senderID"`
	SenderName string               `json:"senderName" bson:"senderName"`
	Content    string               `json:"content" bson:"content"`
	SentTS     time.Time            `json:"sentTS" bson:"sentTS"`
	ReadBy     []primitive.ObjectID `json:"readBy" bson:"readBy"`
}

// Channel is the "interface" used for client communication.
// Exactly one channel is paired with every poll.
type Channel struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id"`
	Name            string               `json:"name" bson:"name"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	PollID          primitive.ObjectID   `json:"pollID" bson:"pollID"`
	CreatedID       primitive.ObjectID   `json:"createdID" bson:"createdID"`
	CreatedName     string               `json:"createdName" bson:"createdName"`
	CreatedTS       time.Time            `json:"createdTS" bson:"-"` // read from Mongo's ObjectID
	Participants    []primitive.ObjectID `json:"participants" bson:"participants"`
	Messages        []Message            `json:"messages" bson:"messages"`
	StatusCode      int32                `json:"statusCode" bson:"statusCD"`
	StatusText      string               `json:"statusText" bson:"-"`
	LastActivity    time.Time            `json:"lastActivity" bson:"lastActivity"`
	MaxParticipants int32                `json:"maxParticipants" bson:"maxParticipants"`
}

// ChannelListItem is the reduced/simplified model used for listings
type ChannelListItem struct {
	ID               primitive.ObjectID `json:"id"`
	Name             string             `json:"name"`
	PollID           primitive.ObjectID `json:"pollID"`
	CreatedName      string             `json:"createdName"`
	ParticipantCount int32              `json:"participantCount"`
	MessageCount     int32              `json:"messageCount"`
	StatusCode       int32              `json:"statusCode"`
	StatusText       string             `json:"statusText"`
	LastActivity     time.Time          `json:"lastActivity"`
}

// ChannelSearch is passed as the search params
type ChannelSearch struct {
	PollID        string
	ParticipantID string
	ActiveOnly    bool
}

// ChannelModel provides the logic to the interface and access to the database
type ChannelModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// information owned by the user model is referenced here
	GetUserName    func(ID string) (string, error)
	IncGroupsCount func(userID primitive.ObjectID, delta int32)
	// channel mutations are replayed into the realtime store through the outbox
	Mirror *mirror.Outbox
}

// Validate checks given values and sets defaults where applicable (immutable)
func (m ChannelModel) Validate(channel Channel) (*Channel, error) {

	cleaned := channel

	cleaned.Name = strings.TrimSpace(cleaned.Name)
	if cleaned.Name == "" || len(cleaned.Name) > MaxChannelNameLength {
		return nil, ErrChannelNameInvalid
	}

	cleaned.Description = strings.TrimSpace(cleaned.Description)
	if len(cleaned.Description) > MaxChannelDescriptionLength {
		return nil, ErrChannelNameInvalid
	}

	if cleaned.MaxParticipants == 0 {
		cleaned.MaxParticipants = DefaultMaxParticipants
	}
	if cleaned.MaxParticipants < 0 || cleaned.MaxParticipants > HardMaxParticipants {
		return nil, ErrMaxParticipantsInvalid
	}

	return &cleaned, nil
}

// IsActive reports whether the channel still accepts mutations
func (c *Channel) IsActive() bool {
	return c.StatusCode == lookups.ChannelStatusOpen
}

// IsParticipant checks the current roster
func (c *Channel) IsParticipant(userID primitive.ObjectID) bool {
	for i := range c.Participants {
		if c.Participants[i] == userID {
			return true
		}
	}
	return false
}

// AddParticipant appends a user to the roster.
// Returns false without error if the user is already in (no-op), an error
// when the channel is at capacity.
func (c *Channel) AddParticipant(userID primitive.ObjectID) (bool, error) {

	if c.IsParticipant(userID) {
		return false, nil
	}

	if int32(len(c.Participants)) >= c.MaxParticipants {
		return false, ErrChannelFull
	}

	c.Participants = append(c.Participants, userID)
	return true, nil
}

// RemoveParticipant drops a user from the roster; false if not a member (no-op)
func (c *Channel) RemoveParticipant(userID primitive.ObjectID) bool {

	for i := range c.Participants {
		if c.Participants[i] == userID {
			c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// AddMessage appends a message; the sender must currently be a participant
// and has implicitly read their own message
func (c *Channel) AddMessage(senderID primitive.ObjectID, senderName string, content string) (*Message, error) {

	if !c.IsParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	content = strings.TrimSpace(content)
	if content == "" || len(content) > MaxMessageLength {
		return nil, ErrMessageInvalid
	}

	message := Message{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		SentTS:     time.Now(),
		ReadBy:     []primitive.ObjectID{senderID},
	}

	c.Messages = append(c.Messages, message)
	c.LastActivity = message.SentTS

	return &message, nil
}

// MarkMessageRead records a read-receipt.
// ok is false when the user is no participant or the message is unknown;
// changed is false when the receipt already existed (idempotent re-marking).
func (c *Channel) MarkMessageRead(userID primitive.ObjectID, messageID primitive.ObjectID) (ok bool, changed bool) {

	if !c.IsParticipant(userID) {
		return false, false
	}

	for i := range c.Messages {
		if c.Messages[i].ID != messageID {
			continue
		}
		for _, r := range c.Messages[i].ReadBy {
			if r == userID {
				return true, false
			}
		}
		c.Messages[i].ReadBy = append(c.Messages[i].ReadBy, userID)
		return true, true
	}

	return false, false
}

// UnreadCount counts the messages a participant has not read yet
func (c *Channel) UnreadCount(userID primitive.ObjectID) int {

	if !c.IsParticipant(userID) {
		return 0
	}

	cnt := 0
	for i := range c.Messages {
		read := false
		for _, r := range c.Messages[i].ReadBy {
			if r == userID {
				read = true
				break
			}
		}
		if !read {
			cnt++
		}
	}
	return cnt
}

// CreateChannel adds a new channel - validated by the controller.
// The creator is the first participant.
func (m ChannelModel) CreateChannel(channel *Channel) (string, error) {

	// set "system-fields"
	channel.ID = primitive.NewObjectID()
	channel.StatusCode = lookups.ChannelStatusOpen
	channel.Participants = []primitive.ObjectID{channel.CreatedID}
	channel.Messages = []Message{}
	channel.LastActivity = time.Now()
	if channel.MaxParticipants == 0 {
		channel.MaxParticipants = DefaultMaxParticipants
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	res, err := m.Collection.InsertOne(ctx, channel)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	m.publish(mirror.EventChannelCreated, channel.ID, map[string]interface{}{
		"name":    channel.Name,
		"pollID":  channel.PollID.Hex(),
		"creator": channel.CreatedID.Hex(),
	})

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// ChannelForPoll builds the channel paired with a new poll
// (injected into the poll model)
func (m ChannelModel) ChannelForPoll(poll *Poll) (string, error) {

	channel := &Channel{
		Name:            poll.Title,
		Description:     poll.Description,
		PollID:          poll.ID,
		CreatedID:       poll.CreatedID,
		CreatedName:     poll.CreatedName,
		MaxParticipants: DefaultMaxParticipants,
	}

	return m.CreateChannel(channel)
}

// GetChannel returns one channel including its full message history
func (m ChannelModel) GetChannel(channelID string) (*Channel, error) {

	id, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return nil, apperror.ErrNoData
	}

	data := Channel{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	addChannelLookups(&data)

	return &data, nil
}

// SearchChannels lists channels, newest activity first
func (m ChannelModel) SearchChannels(search *ChannelSearch) ([]ChannelListItem, error) {

	filter := bson.D{}
	if search.PollID != "" {
		filter = append(filter, bson.E{Key: "pollID", Value: helpers.ObjectID(search.PollID)})
	}
	if search.ParticipantID != "" {
		filter = append(filter, bson.E{Key: "participants", Value: helpers.ObjectID(search.ParticipantID)})
	}
	if search.ActiveOnly {
		filter = append(filter, bson.E{Key: "statusCD", Value: lookups.ChannelStatusOpen})
	}

	// skip the embedded message bodies for listings
	fields := bson.D{
		{Key: "name", Value: 1},
		{Key: "pollID", Value: 1},
		{Key: "createdName", Value: 1},
		{Key: "participants", Value: 1},
		{Key: "messages.senderID", Value: 1}, // just enough to count
		{Key: "statusCD", Value: 1},
		{Key: "lastActivity", Value: 1},
	}

	sort := bson.D{{Key: "lastActivity", Value: -1}}
	opts := options.Find().SetProjection(fields).SetSort(sort).SetLimit(50)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var channels []Channel
	err = cursor.All(ctx, &channels)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if channels == nil {
		return nil, apperror.ErrNoData
	}

	var channelList []ChannelListItem
	var item ChannelListItem

	for i := range channels {
		item.ID = channels[i].ID
		item.Name = channels[i].Name
		item.PollID = channels[i].PollID
		item.CreatedName = channels[i].CreatedName
		item.ParticipantCount = int32(len(channels[i].Participants))
		item.MessageCount = int32(len(channels[i].Messages))
		item.StatusCode = channels[i].StatusCode
		item.StatusText = lookups.ChannelStatus(channels[i].StatusCode)
		item.LastActivity = channels[i].LastActivity

		channelList = append(channelList, item)
	}

	return channelList, nil
}

// Join adds the user to the roster.
// The storage update only matches while the user is absent, so a concurrent
// double-join degrades to the documented no-op.
func (m ChannelModel) Join(channelID string, userID string) (bool, error) {

	channel, err := m.GetChannel(channelID)
	if err != nil {
		return false, err
	}

	if !channel.IsActive() {
		return false, ErrChannelClosed
	}

	userOID := helpers.ObjectID(userID)

	added, err := channel.AddParticipant(userOID)
	if err != nil {
		return false, err
	}
	if !added {
		return false, nil
	}

	filter := bson.D{
		{Key: "_id", Value: channel.ID},
		{Key: "participants", Value: bson.D{{Key: "$ne", Value: userOID}}},
	}
	fields := bson.D{
		{Key: "$push", Value: bson.D{{Key: "participants", Value: userOID}}},
		{Key: "$set", Value: bson.D{{Key: "lastActivity", Value: time.Now()}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	result, err := m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return false, nil
	}

	if m.IncGroupsCount != nil {
		m.IncGroupsCount(userOID, 1)
	}

	m.publish(mirror.EventParticipantJoin, channel.ID, map[string]interface{}{
		"userID": userID,
	})

	return true, nil
}

// Leave removes the user from the roster; false if not currently a member
func (m ChannelModel) Leave(channelID string, userID string) (bool, error) {

	id, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return false, apperror.ErrNoData
	}

	userOID := helpers.ObjectID(userID)

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "participants", Value: userOID},
	}
	fields := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "participants", Value: userOID}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	result, err := m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		// distinguish "unknown channel" from "not a member"
		if _, err := m.GetChannel(channelID); err != nil {
			return false, err
		}
		return false, nil
	}

	if m.IncGroupsCount != nil {
		m.IncGroupsCount(userOID, -1)
	}

	m.publish(mirror.EventParticipantLeave, id, map[string]interface{}{
		"userID": userID,
	})

	return true, nil
}

// SendMessage appends a message from a current participant
func (m ChannelModel) SendMessage(channelID string, senderID string, content string) (*Message, error) {

	channel, err := m.GetChannel(channelID)
	if err != nil {
		return nil, err
	}

	if !channel.IsActive() {
		return nil, ErrChannelClosed
	}

	senderOID := helpers.ObjectID(senderID)

	senderName, err := m.GetUserName(senderID)
	if err != nil {
		return nil, err
	}

	message, err := channel.AddMessage(senderOID, senderName, content)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "_id", Value: channel.ID}}
	fields := bson.D{
		{Key: "$push", Value: bson.D{{Key: "messages", Value: message}}},
		{Key: "$set", Value: bson.D{{Key: "lastActivity", Value: channel.LastActivity}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	result, err := m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}
	if result.MatchedCount == 0 {
		return nil, apperror.ErrNoData // channel deleted in between
	}

	m.publish(mirror.EventMessageSent, channel.ID, map[string]interface{}{
		"messageID":  message.ID.Hex(),
		"senderID":   senderID,
		"senderName": senderName,
		"content":    message.Content,
		"sentTS":     message.SentTS.Format(time.RFC3339),
	})

	return message, nil
}

// MarkMessageRead records a read-receipt; re-marking is a no-op success
func (m ChannelModel) MarkMessageRead(channelID string, userID string, messageID string) (bool, error) {

	channel, err := m.GetChannel(channelID)
	if err != nil {
		return false, err
	}

	userOID := helpers.ObjectID(userID)
	messageOID := helpers.ObjectID(messageID)

	ok, changed := channel.MarkMessageRead(userOID, messageOID)
	if !ok {
		return false, nil
	}
	if !changed {
		return true, nil
	}

	// $addToSet keeps the receipt list free of duplicates even when two
	// requests for the same user interleave
	filter := bson.D{
		{Key: "_id", Value: channel.ID},
		{Key: "messages._id", Value: messageOID},
	}
	fields := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "messages.$.readBy", Value: userOID}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	_, err = m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	m.publish(mirror.EventMessageRead, channel.ID, map[string]interface{}{
		"messageID": messageID,
		"userID":    userID,
	})

	return true, nil
}

// CloseChannel deactivates a channel; restricted to its creator.
// Participants and history remain intact.
func (m ChannelModel) CloseChannel(channelID string, userID string) error {

	channel, err := m.GetChannel(channelID)
	if err != nil {
		return err
	}

	if channel.CreatedID != helpers.ObjectID(userID) {
		return apperror.ErrDenied
	}

	filter := bson.D{{Key: "_id", Value: channel.ID}}
	fields := bson.D{
		{Key: "$set", Value: bson.D{{Key: "statusCD", Value: lookups.ChannelStatusClosed}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	_, err = m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	m.publish(mirror.EventChannelClosed, channel.ID, nil)

	return nil
}

// publish hands a mutation to the outbox (never blocks, never fails the caller)
func (m ChannelModel) publish(kind string, channelID primitive.ObjectID, data map[string]interface{}) {
	if m.Mirror == nil {
		return
	}
	m.Mirror.Enqueue(mirror.Event{
		Kind:      kind,
		ChannelID: channelID.Hex(),
		Data:      data,
	})
}

// internal helpers
func addChannelLookups(channel *Channel) *Channel {
	channel.StatusText = lookups.ChannelStatus(channel.StatusCode)
	channel.CreatedTS = primitive.ObjectID.Timestamp(channel.ID)
	return channel
}
