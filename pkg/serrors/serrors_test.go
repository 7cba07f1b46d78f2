package serrors_test

import (
	"errors"
	"fmt"
	"testing"

	"aimawatch/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func TestWith_MatchesKind(t *testing.T) {
	err := serrors.With(serrors.ErrLoginFailed, "invalid email or password")

	require.True(t, errors.Is(err, serrors.ErrLoginFailed))
	require.False(t, errors.Is(err, serrors.ErrNetwork))
	require.Equal(t, "invalid email or password", err.Error())
}

func TestWrap_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := serrors.Wrap(serrors.ErrNetwork, cause, "could not reach portal")

	require.True(t, errors.Is(err, serrors.ErrNetwork))
	require.True(t, errors.Is(err, cause))
	require.Equal(t, "could not reach portal: connection refused", err.Error())
}

func TestWrap_SurvivesFmtWrapping(t *testing.T) {
	inner := serrors.With(serrors.ErrDecryption, "ciphertext authentication failed")
	outer := fmt.Errorf("checking user 42: %w", inner)

	require.True(t, errors.Is(outer, serrors.ErrDecryption))

	var serr *serrors.Error
	require.True(t, errors.As(outer, &serr))
	require.Equal(t, serrors.ErrDecryption, serr.Kind())
}

func TestKindOnly(t *testing.T) {
	err := serrors.KindOnly(serrors.ErrConflict)

	require.True(t, errors.Is(err, serrors.ErrConflict))
	require.Equal(t, "CONFLICT", err.Error())
}

func TestKinds_AreDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrNetwork,
		serrors.ErrLoginFailed,
		serrors.ErrParse,
		serrors.ErrDecryption,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			require.False(t, errors.Is(serrors.KindOnly(a), b))
		}
	}
}
