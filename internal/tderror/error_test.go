package tderror_test

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"todod/internal/tderror"
)

func TestTDError(t *testing.T) {
	err := tderror.New("some message")

	assert.Equal(t, "some message", err.Error())
	assert.Equal(t, http.StatusInternalServerError, tderror.StatusCode(err))
}

func TestKindMessages(t *testing.T) {
	assert.Equal(t, "This email is already registered.", tderror.Message(tderror.KindEmailTaken))
	assert.Equal(t, "Please enter a valid email.", tderror.Message(tderror.KindInvalidEmail))
	assert.Equal(t, "Password is required.", tderror.Message(tderror.KindMissingPassword))
	assert.Equal(t, "Password should be at least 6 characters.", tderror.Message(tderror.KindWeakPassword))
	assert.Equal(t, "Wrong password. Try again.", tderror.Message(tderror.KindWrongPassword))
	assert.Equal(t, "No account found with this email.", tderror.Message(tderror.KindUnknownAccount))
	assert.Equal(t, "Email and password are required.", tderror.Message(tderror.KindMissingFields))

	// Unrecognized kinds map to the generic fallback.
	assert.Equal(t, "Something went wrong. Please try again.", tderror.Message("network-timeout"))
	assert.Equal(t, "Something went wrong. Please try again.", tderror.Message(""))
}

func TestKindOf(t *testing.T) {
	err := tderror.NewKind(http.StatusUnauthorized, tderror.KindWrongPassword)

	assert.Equal(t, tderror.KindWrongPassword, tderror.KindOf(err))
	assert.Equal(t, http.StatusUnauthorized, tderror.StatusCode(err))
	assert.Equal(t, "Wrong password. Try again.", err.Error())

	assert.Equal(t, tderror.KindOther, tderror.KindOf(errors.New("boom")))
}
