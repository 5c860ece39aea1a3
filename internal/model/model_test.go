package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("options")
	assert.True(t, ok)
	assert.Equal(t, CategoryOptions, c)

	c, ok = ParseCategory(" F&O ")
	assert.True(t, ok)
	assert.Equal(t, CategoryFnO, c)

	_, ok = ParseCategory("Crypto")
	assert.False(t, ok)
}

func TestSubmissionStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusRejected.Valid())
	assert.False(t, SubmissionStatus("archived").Valid())
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}
