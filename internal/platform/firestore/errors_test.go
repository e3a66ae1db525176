package firestore

import (
	"context"
	"errors"
	"testing"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Noore22/Cake-Craft/internal/platform/config"
)

func TestWrapErrorClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		code        codes.Code
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{code: codes.NotFound, notFound: true},
		{code: codes.AlreadyExists, conflict: true},
		{code: codes.Aborted, conflict: true},
		{code: codes.Unavailable, unavailable: true},
		{code: codes.ResourceExhausted, unavailable: true},
		{code: codes.PermissionDenied},
	}

	for _, tc := range cases {
		t.Run(tc.code.String(), func(t *testing.T) {
			err := WrapError("load", status.Error(tc.code, "boom"))
			var repoErr *Error
			require.ErrorAs(t, err, &repoErr)
			assert.Equal(t, tc.notFound, repoErr.IsNotFound())
			assert.Equal(t, tc.conflict, repoErr.IsConflict())
			assert.Equal(t, tc.unavailable, repoErr.IsUnavailable())
			assert.Contains(t, repoErr.Error(), "firestore load")
		})
	}
}

func TestWrapErrorPassesThroughCancellation(t *testing.T) {
	assert.Nil(t, WrapError("noop", nil))
	assert.ErrorIs(t, WrapError("op", context.Canceled), context.Canceled)
	assert.ErrorIs(t, WrapError("op", status.Error(codes.Canceled, "x")), context.Canceled)
	assert.ErrorIs(t, WrapError("op", status.Error(codes.DeadlineExceeded, "x")), context.DeadlineExceeded)
}

func TestWrapErrorKeepsSentinels(t *testing.T) {
	sentinel := errors.New("fingerprint mismatch")
	err := WrapError("transaction", sentinel)
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(WrapError("get", status.Error(codes.NotFound, "missing"))))
}

func TestProviderRequiresProjectAndRejectsAfterClose(t *testing.T) {
	t.Setenv(envGoogleProjectID, "")

	provider := NewProvider(config.FirestoreConfig{})
	_, err := provider.Client(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project id is required")

	require.NoError(t, provider.Close(context.Background()))
	_, err = provider.Client(context.Background())
	assert.ErrorIs(t, err, ErrProviderClosed)
}

func TestProviderProjectIDFallsBackToEnvironment(t *testing.T) {
	t.Setenv(envGoogleProjectID, "cakecraft-env")
	assert.Equal(t, "cakecraft-env", NewProvider(config.FirestoreConfig{}).ProjectID())
	assert.Equal(t, "cakecraft", NewProvider(config.FirestoreConfig{ProjectID: " cakecraft "}).ProjectID())
}

func TestTxOptionsAdjustPolicy(t *testing.T) {
	policy := DefaultTxPolicy
	for _, opt := range []TxOption{WithTxAttempts(3), WithTxTimeout(0), WithTxAttempts(-1)} {
		opt(&policy)
	}
	assert.Equal(t, 3, policy.Attempts)
	assert.Equal(t, DefaultTxPolicy.Timeout, policy.Timeout)
}

func TestRunTransactionRejectsNilClient(t *testing.T) {
	err := RunTransaction(context.Background(), nil, func(context.Context, *gcfirestore.Transaction) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client is nil")
}
