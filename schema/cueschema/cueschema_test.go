package cueschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop/schema/cueschema"
)

const propsSrc = `
#Props: {
	email: string & =~"^[^@]+@[^@]+$"
	age:   int & >=18
}

#Model: {
	count: int | *0
	theme: "light" | "dark" | *"light"
}
`

func TestValidateAcceptsConformingValue(t *testing.T) {
	t.Parallel()

	s, err := cueschema.Compile(propsSrc, "#Props")
	require.NoError(t, err)

	res := s.Validate(map[string]any{"email": "john@example.com", "age": 25})
	require.True(t, res.OK(), "issues: %v", res.Issues)
}

func TestValidateReportsIssues(t *testing.T) {
	t.Parallel()

	s, err := cueschema.Compile(propsSrc, "#Props")
	require.NoError(t, err)

	res := s.Validate(map[string]any{"email": "invalid-email", "age": 16})
	require.False(t, res.OK())
	assert.NotEmpty(t, res.Issues[0].Message)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	s, err := cueschema.Compile(propsSrc, "#Model")
	require.NoError(t, err)

	def, ok := s.Default().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "light", def["theme"])
}

func TestCompileMissingPath(t *testing.T) {
	t.Parallel()

	_, err := cueschema.Compile(propsSrc, "#Nope")
	require.Error(t, err)
}
