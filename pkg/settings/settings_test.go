package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCliParams(t *testing.T) {
	r := NewCliParams()
	assert.Equal(t, &Run{}, r)
	assert.False(t, r.IsDebug())
	assert.True(t, r.Interactive())
}

func TestRun_SetInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want InputSettings
	}{
		{"no args", nil, InputSettings{FromStdin: true}},
		{"dash", []string{"-"}, InputSettings{Path: "-", FromStdin: true}},
		{"file", []string{"data.csv"}, InputSettings{Path: "data.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCliParams()
			r.Input.Path = "stale.csv"
			r.SetInput(tt.args)
			assert.Equal(t, tt.want, r.Input)
		})
	}
}

func TestRun_Modes(t *testing.T) {
	var nilRun *Run
	assert.False(t, nilRun.IsDebug())
	assert.False(t, nilRun.Interactive())

	assert.True(t, (&Run{MinLogLevel: -1}).IsDebug())
	assert.False(t, (&Run{Snapshot: true}).Interactive())
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := FromContext(ctx)
	assert.False(t, ok)
	_, ok = FromContext(nil) //nolint:staticcheck
	assert.False(t, ok)

	r := &Run{NoColor: true}
	got, ok := FromContext(IntoContext(ctx, r))
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = FromContext(IntoContext(ctx, nil))
	assert.False(t, ok, "a nil Run is not reported")

	_, ok = FromContext(context.WithValue(ctx, runKey{}, "wrong type"))
	assert.False(t, ok)
}

func TestRunFrom(t *testing.T) {
	assert.Equal(t, NewCliParams(), RunFrom(context.Background()))

	r := &Run{Snapshot: true}
	assert.Same(t, r, RunFrom(IntoContext(context.Background(), r)))
}
