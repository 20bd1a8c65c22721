package internal_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdk2git/cdk2git/internal"
)

func TestSession(t *testing.T) {
	t.Run("id carries the cdk2git prefix and a number", func(t *testing.T) {
		id := string(internal.GenerateSession().ID())
		rest, ok := strings.CutPrefix(id, "cdk2git-")
		require.True(t, ok, "id %q must start with cdk2git-", id)

		n, err := strconv.Atoi(rest)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 1_000_000)
	})

	t.Run("string matches the id", func(t *testing.T) {
		session := internal.GenerateSession()
		require.Equal(t, string(session.ID()), session.String())
	})
}
