package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInputErrorClassification(t *testing.T) {
	err := Inputf("bad argument %d", 7)
	require.EqualError(t, err, "bad argument 7")
	require.True(t, IsInput(err))
	require.False(t, IsAccess(err))
}

func TestAccessErrorClassification(t *testing.T) {
	err := Accessf("no permission")
	require.True(t, IsAccess(err))
	require.False(t, IsInput(err))
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	err := fmt.Errorf("outer: %w", Inputf("inner"))
	require.True(t, IsInput(err))
}

func TestPlainErrorsMatchNeitherKind(t *testing.T) {
	err := errors.New("boom")
	require.False(t, IsInput(err))
	require.False(t, IsAccess(err))
}
