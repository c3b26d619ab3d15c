package auth

import (
	"testing"
	"time"

	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewTokenVerifier("secret", "cheeta-auth")

	token, err := v.Issue("uid-42", "owner@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-42", claims.UserID())
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestVerifyRejects(t *testing.T) {
	v := NewTokenVerifier("secret", "cheeta-auth")

	expired, err := v.Issue("uid-42", "", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, apperror.ErrTokenExpired)

	foreign, err := NewTokenVerifier("other-secret", "cheeta-auth").Issue("uid-42", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(foreign)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	wrongIssuer, err := NewTokenVerifier("secret", "someone-else").Issue("uid-42", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongIssuer)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	noSubject, err := v.Issue("", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(noSubject)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	_, err = v.Verify("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}
