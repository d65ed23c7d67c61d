package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

func newTestManager(maxAttempts int) *SessionManager {
	m := NewSessionManager(maxAttempts)
	m.SoftBackoff = 0
	m.HardBackoff = 0
	return m
}

func TestEstablishFailsAfterExactlyMaxAttempts(t *testing.T) {
	sess := &fakeSession{loginOutcomes: []LoginOutcome{LoginHardFailure}}
	m := newTestManager(5)

	err := m.Establish(context.Background(), sess, &config.Credentials{})
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 5, authErr.Attempts)
	assert.Equal(t, 5, sess.loginCalls)
}

func TestEstablishSucceedsAfterSoftFailures(t *testing.T) {
	sess := &fakeSession{loginOutcomes: []LoginOutcome{
		LoginSoftFailure,
		LoginSoftFailure,
		LoginSuccess,
	}}
	m := newTestManager(5)

	err := m.Establish(context.Background(), sess, &config.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 3, sess.loginCalls)
}

func TestEstablishRetriesTransportErrors(t *testing.T) {
	sess := &fakeSession{loginErr: errors.New("connection reset")}
	m := newTestManager(3)

	err := m.Establish(context.Background(), sess, &config.Credentials{})
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 3, sess.loginCalls)
}

func TestEstablishHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := &fakeSession{loginOutcomes: []LoginOutcome{LoginSuccess}}
	m := newTestManager(5)

	err := m.Establish(ctx, sess, &config.Credentials{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sess.loginCalls)
}
