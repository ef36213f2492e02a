package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testChannel(maxParticipants int32, participants ...primitive.ObjectID) *Channel {

	return &Channel{
		ID:              primitive.NewObjectID(),
		Name:            "Test Channel",
		PollID:          primitive.NewObjectID(),
		CreatedID:       primitive.NewObjectID(),
		Participants:    participants,
		Messages:        []Message{},
		MaxParticipants: maxParticipants,
		LastActivity:    time.Now().Add(-time.Minute),
	}
}

func TestValidateChannel(t *testing.T) {

	m := ChannelModel{}

	channel, err := m.Validate(Channel{Name: "  City Talk  "})
	require.NoError(t, err)
	assert.Equal(t, "City Talk", channel.Name)
	assert.Equal(t, int32(DefaultMaxParticipants), channel.MaxParticipants)

	_, err = m.Validate(Channel{Name: "   "})
	assert.Equal(t, ErrChannelNameInvalid, err)

	_, err = m.Validate(Channel{Name: "ok", MaxParticipants: HardMaxParticipants + 1})
	assert.Equal(t, ErrMaxParticipantsInvalid, err)

	channel, err = m.Validate(Channel{Name: "ok", MaxParticipants: HardMaxParticipants})
	require.NoError(t, err)
	assert.Equal(t, int32(HardMaxParticipants), channel.MaxParticipants)
}

func TestAddParticipant(t *testing.T) {

	member := primitive.NewObjectID()
	channel := testChannel(2, member)

	// duplicate join is a no-op, not an error
	added, err := channel.AddParticipant(member)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, channel.Participants, 1)

	added, err = channel.AddParticipant(primitive.NewObjectID())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, channel.Participants, 2)
}

func TestJoinAtCapacity(t *testing.T) {

	channel := testChannel(2, primitive.NewObjectID(), primitive.NewObjectID())

	added, err := channel.AddParticipant(primitive.NewObjectID())
	assert.Equal(t, ErrChannelFull, err)
	assert.False(t, added)

	// roster unchanged
	assert.Len(t, channel.Participants, 2)
}

func TestRemoveParticipant(t *testing.T) {

	member := primitive.NewObjectID()
	channel := testChannel(10, member, primitive.NewObjectID())

	assert.True(t, channel.RemoveParticipant(member))
	assert.Len(t, channel.Participants, 1)

	// not a member (anymore) is a no-op
	assert.False(t, channel.RemoveParticipant(member))
	assert.Len(t, channel.Participants, 1)
}

func TestAddMessage(t *testing.T) {

	member := primitive.NewObjectID()
	channel := testChannel(10, member)
	before := channel.LastActivity

	message, err := channel.AddMessage(member, "roger", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", message.Content)
	assert.Len(t, channel.Messages, 1)
	assert.True(t, channel.LastActivity.After(before))

	// the sender has implicitly read their own message
	require.Len(t, message.ReadBy, 1)
	assert.Equal(t, member, message.ReadBy[0])
}

func TestAddMessageRejections(t *testing.T) {

	member := primitive.NewObjectID()
	channel := testChannel(10, member)

	_, err := channel.AddMessage(primitive.NewObjectID(), "intruder", "hi")
	assert.Equal(t, ErrNotParticipant, err)

	_, err = channel.AddMessage(member, "roger", "   ")
	assert.Equal(t, ErrMessageInvalid, err)

	_, err = channel.AddMessage(member, "roger", strings.Repeat("x", MaxMessageLength+1))
	assert.Equal(t, ErrMessageInvalid, err)

	assert.Empty(t, channel.Messages)
}

func TestMarkMessageRead(t *testing.T) {

	sender := primitive.NewObjectID()
	reader := primitive.NewObjectID()
	channel := testChannel(10, sender, reader)

	message, err := channel.AddMessage(sender, "roger", "hello")
	require.NoError(t, err)

	ok, changed := channel.MarkMessageRead(reader, message.ID)
	assert.True(t, ok)
	assert.True(t, changed)
	assert.Len(t, channel.Messages[0].ReadBy, 2)

	// re-marking is a no-op success
	ok, changed = channel.MarkMessageRead(reader, message.ID)
	assert.True(t, ok)
	assert.False(t, changed)
	assert.Len(t, channel.Messages[0].ReadBy, 2)

	// unknown message
	ok, _ = channel.MarkMessageRead(reader, primitive.NewObjectID())
	assert.False(t, ok)

	// non-participant
	ok, _ = channel.MarkMessageRead(primitive.NewObjectID(), message.ID)
	assert.False(t, ok)
}

func TestUnreadCount(t *testing.T) {

	sender := primitive.NewObjectID()
	reader := primitive.NewObjectID()
	channel := testChannel(10, sender, reader)

	first, err := channel.AddMessage(sender, "roger", "one")
	require.NoError(t, err)
	_, err = channel.AddMessage(sender, "roger", "two")
	require.NoError(t, err)

	// own messages count as read
	assert.Equal(t, 0, channel.UnreadCount(sender))
	assert.Equal(t, 2, channel.UnreadCount(reader))

	channel.MarkMessageRead(reader, first.ID)
	assert.Equal(t, 1, channel.UnreadCount(reader))

	// outsiders have nothing to read
	assert.Equal(t, 0, channel.UnreadCount(primitive.NewObjectID()))
}
