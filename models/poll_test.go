package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testPoll(expiresIn time.Duration, optionTexts ...string) *Poll {

	options := make([]PollOption, 0, len(optionTexts))
	for _, text := range optionTexts {
		options = append(options, PollOption{Text: text})
	}

	return &Poll{
		ID:          primitive.NewObjectID(),
		Title:       "Test Poll",
		Description: "A test poll",
		Options:     options,
		CreatedID:   primitive.NewObjectID(),
		ExpiresAt:   time.Now().Add(expiresIn),
		Votes:       []PollVote{},
	}
}

func TestValidatePoll(t *testing.T) {

	m := PollModel{}

	valid := Poll{
		Title:       "  Where to build the playground?  ",
		Description: "City decision",
		Options:     []PollOption{{Text: " North "}, {Text: "South"}},
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	poll, err := m.Validate(valid)
	require.NoError(t, err)
	assert.Equal(t, "Where to build the playground?", poll.Title)
	assert.Equal(t, "North", poll.Options[0].Text)

	// the given struct must not be touched
	assert.Equal(t, "  Where to build the playground?  ", valid.Title)

	_, err = m.Validate(Poll{Description: "x", Options: valid.Options, ExpiresAt: valid.ExpiresAt})
	assert.Equal(t, ErrPollTitleInvalid, err)

	long := make([]byte, MaxPollTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = m.Validate(Poll{Title: string(long), Description: "x", Options: valid.Options, ExpiresAt: valid.ExpiresAt})
	assert.Equal(t, ErrPollTitleInvalid, err)

	_, err = m.Validate(Poll{Title: "t", Options: valid.Options, ExpiresAt: valid.ExpiresAt})
	assert.Equal(t, ErrPollDescriptionInvalid, err)

	_, err = m.Validate(Poll{Title: "t", Description: "d", Options: []PollOption{{Text: "only one"}}, ExpiresAt: valid.ExpiresAt})
	assert.Equal(t, ErrPollOptionsInvalid, err)

	_, err = m.Validate(Poll{Title: "t", Description: "d", Options: []PollOption{{Text: "a"}, {Text: "  "}}, ExpiresAt: valid.ExpiresAt})
	assert.Equal(t, ErrPollOptionsInvalid, err)
}

func TestValidatePollExpiryInPast(t *testing.T) {

	m := PollModel{}

	poll := Poll{
		Title:       "t",
		Description: "d",
		Options:     []PollOption{{Text: "a"}, {Text: "b"}},
		ExpiresAt:   time.Now().Add(-time.Second),
	}

	_, err := m.Validate(poll)
	assert.Equal(t, ErrPollExpiryInPast, err)

	// exactly "now" is not strictly in the future either
	poll.ExpiresAt = time.Now().Add(-time.Nanosecond)
	_, err = m.Validate(poll)
	assert.Equal(t, ErrPollExpiryInPast, err)
}

func TestVoteTallies(t *testing.T) {

	poll := testPoll(time.Hour, "Red", "Green", "Blue")

	const n = 25
	for i := 0; i < n; i++ {
		user := primitive.NewObjectID()
		idx := int32(i % len(poll.Options))

		require.NoError(t, poll.CheckVote(user, idx))
		poll.applyVote(user, idx, time.Now())
	}

	assert.Equal(t, int32(n), poll.TotalVotes)
	assert.Len(t, poll.Votes, n)

	var sum int32
	for _, o := range poll.Options {
		sum += o.Count
	}
	assert.Equal(t, int32(n), sum)
}

func TestDuplicateVoteRejected(t *testing.T) {

	poll := testPoll(time.Hour, "Yes", "No")
	user := primitive.NewObjectID()

	require.NoError(t, poll.CheckVote(user, 0))
	poll.applyVote(user, 0, time.Now())

	err := poll.CheckVote(user, 1)
	assert.Equal(t, ErrAlreadyVoted, err)
}

func TestInvalidOptionRejected(t *testing.T) {

	poll := testPoll(time.Hour, "Yes", "No")
	user := primitive.NewObjectID()

	assert.Equal(t, ErrInvalidOption, poll.CheckVote(user, -1))
	assert.Equal(t, ErrInvalidOption, poll.CheckVote(user, 2))

	// nothing changed
	assert.Equal(t, int32(0), poll.TotalVotes)
	assert.Empty(t, poll.Votes)
	assert.Equal(t, int32(0), poll.Options[0].Count)
	assert.Equal(t, int32(0), poll.Options[1].Count)
}

func TestExpiryReporting(t *testing.T) {

	poll := testPoll(-time.Second, "Yes", "No")

	assert.True(t, poll.IsExpired())
	// the pure query does not mutate
	assert.Equal(t, int32(0), poll.StatusCode)

	// lazy correction applies once
	assert.True(t, poll.refreshStatus())
	assert.Equal(t, "expired", addPollLookups(poll).StatusText)
	assert.False(t, poll.refreshStatus())

	active := testPoll(time.Hour, "Yes", "No")
	assert.False(t, active.IsExpired())
	assert.False(t, active.refreshStatus())
}

// the full voting walk-through: A votes, A again, B votes
func TestVotingScenario(t *testing.T) {

	poll := testPoll(time.Hour, "Yes", "No")
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	require.NoError(t, poll.CheckVote(userA, 0))
	poll.applyVote(userA, 0, time.Now())

	assert.Equal(t, int32(1), poll.Options[0].Count)
	assert.Equal(t, int32(1), poll.TotalVotes)

	err := poll.CheckVote(userA, 0)
	require.Error(t, err)
	assert.EqualError(t, err, "you have already voted on this poll")

	require.NoError(t, poll.CheckVote(userB, 1))
	poll.applyVote(userB, 1, time.Now())

	assert.Equal(t, int32(1), poll.Options[1].Count)
	assert.Equal(t, int32(2), poll.TotalVotes)
}

func TestVoteOnExpiredPoll(t *testing.T) {

	poll := testPoll(-time.Second, "Yes", "No")
	user := primitive.NewObjectID()

	err := poll.CheckVote(user, 0)
	require.Error(t, err)
	assert.EqualError(t, err, "poll has expired")

	// poll unchanged
	assert.Equal(t, int32(0), poll.TotalVotes)
	assert.Empty(t, poll.Votes)
}

func TestVoterOf(t *testing.T) {

	poll := testPoll(time.Hour, "Yes", "No")
	user := primitive.NewObjectID()

	assert.False(t, poll.voterOf(user))
	poll.applyVote(user, 0, time.Now())
	assert.True(t, poll.voterOf(user))
	assert.False(t, poll.voterOf(primitive.NewObjectID()))
}
