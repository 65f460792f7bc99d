package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
)

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"too short", "count >"},
		{"too long", "count > 1 2"},
		{"bad path", "a..b == 1"},
		{"unknown operator", "count =~ 1"},
		{"ordering on string", "name > bob"},
		{"spaced string", `name == "a b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expr(tt.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expr)
		})
	}

	assert.Panics(t, func() { MustExpr("nonsense") })
}

func TestEval(t *testing.T) {
	model := beepboop.Model{
		"count": 3,
		"ratio": 0.5,
		"ok":    true,
		"name":  "ada",
		"gone":  nil,
		"user":  map[string]any{"age": int64(36), "nick": "ada"},
	}
	tests := []struct {
		expr string
		want bool
	}{
		{"count == 3", true},
		{"count != 3", false},
		{"count > 2", true},
		{"count >= 3", true},
		{"count < 3", false},
		{"count <= 3", true},
		{"ratio < 1", true},
		{"ok == true", true},
		{"ok == false", false},
		{"ok != false", true},
		{"name == ada", true},
		{`name == "ada"`, true},
		{"name != bob", true},
		{"name > 1", false},
		{"gone == nil", true},
		{"user.age >= 18", true},
		{"user.missing == nil", false},
		{"missing != 1", false},
		{`user.nick == "countess"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.evalModel(model))
		})
	}
}

func TestExprInMachine(t *testing.T) {
	m := beepboop.New().
		States("idle", "big").
		Transition("idle", "inc", "idle", beepboop.Assign("count", func(ev *beepboop.EventDetails) any {
			return ev.Model().Int("count") + 1
		})).
		Transition("idle", "check", "big", MustExpr("count >= 2")).
		MustCompile()
	a := beepboop.NewActor(m, beepboop.WithLogger(logger.Nop()))
	t.Cleanup(a.Unmount)
	ctx := context.Background()
	require.NoError(t, a.Interpret(ctx))

	require.NoError(t, a.Send(ctx, "inc", nil))
	require.NoError(t, a.Send(ctx, "check", nil))
	assert.Equal(t, "idle", a.State())

	require.NoError(t, a.Send(ctx, "inc", nil))
	require.NoError(t, a.Send(ctx, "check", nil))
	assert.Equal(t, "big", a.State())
}
