package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	wrapped := ErrAlreadyFriends.WithCause(fmt.Errorf("duplicate key"))
	require.ErrorIs(t, wrapped, ErrAlreadyFriends)
	require.NotErrorIs(t, wrapped, ErrBlockAlreadyExists)
}

func TestWithCausePreservesFields(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := ErrChatroomCreationFailed.WithCause(cause)

	require.Equal(t, ErrChatroomCreationFailed.Kind, wrapped.Kind)
	require.Equal(t, ErrChatroomCreationFailed.Status, wrapped.Status)
	require.Equal(t, ErrChatroomCreationFailed.Message, wrapped.Message)
	require.ErrorIs(t, errors.Unwrap(wrapped), cause)
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusOK, StatusOf(nil))
	require.Equal(t, http.StatusNotFound, StatusOf(ErrUserNotFound))
	require.Equal(t, http.StatusConflict, StatusOf(ErrFriendRequestAlreadyExists))
	require.Equal(t, http.StatusForbidden, StatusOf(ErrFriendRequestBlocked))
	require.Equal(t, http.StatusInternalServerError, StatusOf(fmt.Errorf("opaque")))
}

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("context: %w", ErrBlockNotFound)
	require.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestFrom(t *testing.T) {
	e, ok := From(ErrValidation)
	require.True(t, ok)
	require.Equal(t, "VALIDATION_ERROR", e.Kind)

	_, ok = From(fmt.Errorf("opaque"))
	require.False(t, ok)
}
