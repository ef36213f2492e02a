package models

import (
	"context"
	"opinify-api/helpers"
	"opinify-api/lookups"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// field limits according to the data model
const (
	MinUserNameLength = 3
	MaxUserNameLength = 30
	MinPasswordLength = 8
)

var userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// UserProfile holds the optional free-form subfields
type UserProfile struct {
	FirstName string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Bio       string `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
}

// User is the "interface" used for client communication
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	UserName     string             `json:"userName" bson:"userName"`
	Password     string             `json:"password,omitempty" bson:"password"` // hash value
	EMailAddress string             `json:"eMail" bson:"eMail"`
	RoleCode     int32              `json:"roleCode" bson:"roleCD"`
	RoleText     string             `json:"roleText" bson:"-"`
	Location     *GeoPoint          `json:"location,omitempty" bson:"location,omitempty"`
	Profile      *UserProfile       `json:"profile,omitempty" bson:"profile,omitempty"`
	PollsVoted   int32              `json:"pollsVoted" bson:"pollsVoted"`   // derived counter, recomputable from votes
	GroupsCount  int32              `json:"groupsCount" bson:"groupsCount"` // derived counter, recomputable from participants
	LastSeenTS   time.Time          `json:"lastSeenTS" bson:"lastSeenTS,omitempty"`
}

// Credentials is used for programmatic control
type Credentials struct {
	UserName string `bson:"userName"`
	RoleCode int32  `bson:"roleCD"`
}

// UserModel provides the logic to the interface and access to the database
type UserModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
}

// Validate checks a registration request (immutable)
func (m UserModel) Validate(user User) (*User, error) {

	cleaned := user

	cleaned.UserName = strings.TrimSpace(cleaned.UserName)
	if len(cleaned.UserName) < MinUserNameLength ||
		len(cleaned.UserName) > MaxUserNameLength ||
		!userNamePattern.MatchString(cleaned.UserName) {
		return nil, ErrInvalidUser
	}

	cleaned.EMailAddress = strings.ToLower(strings.TrimSpace(cleaned.EMailAddress))
	if !strings.Contains(cleaned.EMailAddress, "@") {
		return nil, ErrInvalidUser
	}

	if len(strings.TrimSpace(cleaned.Password)) < MinPasswordLength {
		return nil, ErrInvalidPassword
	}

	return &cleaned, nil
}

// UserExists checks if a User Name is available - used in clients for in-type error checking
// (wrapper of internal helper function)
func (m UserModel) UserExists(userName string) bool {
	b, _ := userExists(m.Collection, userName)
	return b
}

// EMailAddressExists checks if an eMail-Address is already assigned to any account
// used in clients for in-type error checking
func (m UserModel) EMailAddressExists(emailAddress string) bool {
	b, _ := eMailExists(m.Collection, emailAddress)
	return b
}

// CreateUser adds a new User
func (m UserModel) CreateUser(user User) (string, error) {

	// enforce the field rules and persist the cleaned values
	// (trimmed name, lowercased email) so lookups stay case-insensitive
	cleaned, err := m.Validate(user)
	if err != nil {
		return "", err
	}
	user = *cleaned

	// friendly pre-checks so the client learns which field collides;
	// the unique indexes remain the actual guard
	b, err := userExists(m.Collection, user.UserName)
	if b || err != nil {
		return "", ErrUserNameNotAvailable
	}

	b, err = eMailExists(m.Collection, user.EMailAddress)
	if b || err != nil {
		return "", ErrEMailAddressTaken
	}

	pwdHash, err := helpers.GenerateHash(user.Password)
	if err != nil {
		return "", err
	}

	user.ID = primitive.NewObjectID()
	user.Password = pwdHash
	user.RoleCode = lookups.UserRoleMember
	user.PollsVoted = 0
	user.GroupsCount = 0
	user.LastSeenTS = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	res, err := m.Collection.InsertOne(ctx, user)
	if err != nil {
		// 11000 = DUP: lost a race against a concurrent registration
		if we, ok := err.(mongo.WriteException); ok && len(we.WriteErrors) > 0 && we.WriteErrors[0].Code == 11000 {
			return "", ErrUserNameNotAvailable
		}
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetUserByName reads a user's account data
func (m UserModel) GetUserByName(userName string) (*User, error) {

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err := m.Collection.FindOne(ctx, bson.M{"userName": userName}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	addUserLookups(&user)

	return &user, nil
}

// GetUserByEMail reads a user's account data (login is by email address)
func (m UserModel) GetUserByEMail(emailAddress string) (*User, error) {

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err := m.Collection.FindOne(ctx, bson.M{"eMail": strings.ToLower(emailAddress)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	addUserLookups(&user)

	return &user, nil
}

// GetUserByID reads a user's account data
func (m UserModel) GetUserByID(ID string) (*User, error) {

	var user User

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	addUserLookups(&user)

	return &user, nil
}

// GetUserName returns the user name from an ID (reduced version, without profile data)
func (m UserModel) GetUserName(ID string) (string, error) {

	data := struct {
		UserName string `bson:"userName"`
	}{}

	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return "", ErrInvalidUser
	}

	fields := bson.D{
		{Key: "_id", Value: 0}, // _id is always delivered unless explicitly excluded
		{Key: "userName", Value: 1}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrInvalidUser
		}
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return data.UserName, nil
}

// CheckPassword tests if a login's password matches (no DB access needed)
func (m UserModel) CheckPassword(givenPassword string, userInfo User) bool {
	match, err := helpers.CompareHash(userInfo.Password, givenPassword)
	if err != nil {
		return false
	}
	return match
}

// SetLastSeen saves the timestamp of the last log-in
func (m UserModel) SetLastSeen(userID primitive.ObjectID) {
	// no error is returned since this function is not essential

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "lastSeenTS", Value: time.Now()}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	// just fire & forget
	_, _ = m.Collection.UpdateOne(ctx, filter, update)
}

// IncPollsVoted bumps the denormalized vote counter.
// Treated as a cache value: a lost increment is not compensated, the ground
// truth stays in the polls' vote records.
func (m UserModel) IncPollsVoted(userID primitive.ObjectID) {

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "pollsVoted", Value: 1}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	// just fire & forget
	_, _ = m.Collection.UpdateOne(ctx, filter, update)
}

// IncGroupsCount adjusts the denormalized channel membership counter
// (delta +1 on join, -1 on leave); same cache semantics as IncPollsVoted
func (m UserModel) IncGroupsCount(userID primitive.ObjectID, delta int32) {

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "groupsCount", Value: delta}}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	// just fire & forget
	_, _ = m.Collection.UpdateOne(ctx, filter, update)
}

// GetCredentials returns account infos to control permissions
func (m UserModel) GetCredentials(userID string) (*Credentials, error) {
	var credentials Credentials

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUser
	}

	fields := bson.D{
		{Key: "_id", Value: 0}, // _id is always delivered unless explicitly excluded
		{Key: "userName", Value: 1},
		{Key: "roleCD", Value: 1},
	}

	opts := options.FindOne().SetProjection(fields)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&credentials)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidUser
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &credentials, nil
}

// internal implementations that are used by multiple methods of the model
func userExists(collection *mongo.Collection, userName string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	// there seems to be no function like "exists" so a projection on just the ID is used
	fields := bson.D{
		{Key: "_id", Value: 1}}

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	err := collection.FindOne(ctx, bson.M{"userName": userName}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		// treat errors as a "yes" - caller should not evaluate the result in case of an error
		return true, err
	}
	// no error means a document was found, hence the name is taken
	return true, nil
}

func eMailExists(collection *mongo.Collection, emailAddress string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // cancel after 10 seconds

	fields := bson.D{
		{Key: "_id", Value: 1}}

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	err := collection.FindOne(ctx, bson.M{"eMail": strings.ToLower(emailAddress)}, options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		// treat errors as a "yes" - caller should not evaluate the result in case of an error
		return true, err
	}
	return true, nil
}

// internal helpers
// actually that's not immutable, but ok here
func addUserLookups(user *User) *User {
	user.RoleText = lookups.UserRole(user.RoleCode)
	return user
}
