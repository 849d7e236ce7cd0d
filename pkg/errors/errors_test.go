package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	base := Wrap(CodeNotFound, "question not found", nil)
	wrapped := fmt.Errorf("handler: %w", base)

	require.True(t, IsCode(wrapped, CodeNotFound))
	require.False(t, IsCode(wrapped, CodeInvalidInput))
	require.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestMessageOfOmitsCause(t *testing.T) {
	err := Wrap(CodePersistenceError, "insert failed", fmt.Errorf("connection refused"))

	require.Equal(t, "insert failed: connection refused", err.Error())
	require.Equal(t, "insert failed", MessageOf(err))
	require.Equal(t, "", CodeOf(fmt.Errorf("plain")))
	require.Equal(t, "plain", MessageOf(fmt.Errorf("plain")))
}
