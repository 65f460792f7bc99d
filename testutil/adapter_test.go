package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounterAdapter(t *testing.T) {
	t.Parallel()

	a := Interpret(t, Counter().MustCompile())
	a.RequireState("idle")

	a.Send("inc", nil)
	a.Send("inc", nil)
	a.Send("dec", nil)

	require.True(t, a.IsInState("idle"))
	require.Equal(t, 1, a.Actor.Model().Int("count"))
	require.NoError(t, a.WaitForStability(time.Second))
}
