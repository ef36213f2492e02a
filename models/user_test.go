package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUser(t *testing.T) {

	m := UserModel{}

	user, err := m.Validate(User{
		UserName:     "  roger_29  ",
		EMailAddress: " Roger@Example.COM ",
		Password:     "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "roger_29", user.UserName)
	assert.Equal(t, "roger@example.com", user.EMailAddress)

	// too short
	_, err = m.Validate(User{UserName: "ab", EMailAddress: "a@b.c", Password: "longenough"})
	assert.Equal(t, ErrInvalidUser, err)

	// illegal characters
	_, err = m.Validate(User{UserName: "roger 29", EMailAddress: "a@b.c", Password: "longenough"})
	assert.Equal(t, ErrInvalidUser, err)

	// email without @
	_, err = m.Validate(User{UserName: "roger", EMailAddress: "nonsense", Password: "longenough"})
	assert.Equal(t, ErrInvalidUser, err)

	// password below minimum
	_, err = m.Validate(User{UserName: "roger", EMailAddress: "a@b.c", Password: "short"})
	assert.Equal(t, ErrInvalidPassword, err)
}

func TestCreateUserValidation(t *testing.T) {

	m := UserModel{}

	// invalid registrations are rejected before any store access
	_, err := m.CreateUser(User{UserName: "ab", EMailAddress: "a@b.c", Password: "longenough"})
	assert.Equal(t, ErrInvalidUser, err)

	_, err = m.CreateUser(User{UserName: "roger", EMailAddress: "nonsense", Password: "longenough"})
	assert.Equal(t, ErrInvalidUser, err)

	_, err = m.CreateUser(User{UserName: "roger", EMailAddress: "a@b.c", Password: "short"})
	assert.Equal(t, ErrInvalidPassword, err)
}
