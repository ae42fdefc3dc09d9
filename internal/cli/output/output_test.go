package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	tests := []struct {
		input string
		want  OutputMode
	}{
		{"text", ModeText},
		{"JSON", ModeJSON},
		{" json ", ModeJSON},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"markdown", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.input))
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto tty", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeJSON},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json tty", ModeJSON, true, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, true, ModeText)

	r.Table([]string{"name", "id"}, [][]any{{"customers", "v1"}, {"orders", "v2"}})

	s := out.String()
	assert.Contains(t, s, "NAME")
	assert.Contains(t, s, "customers")
	assert.Contains(t, s, "orders")
	assert.Contains(t, s, "─")
}

func TestRenderer_EmptyTable(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, true, ModeText)

	r.Table([]string{"name"}, nil)
	assert.Equal(t, "(0 rows)\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)

	require.NoError(t, r.JSON(map[string]any{"state": "COMPLETED"}))
	assert.JSONEq(t, `{"state":"COMPLETED"}`, out.String())
	assert.Contains(t, out.String(), "\n  \"state\"")
}

func TestRenderer_Messages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, true, ModeText)

	r.Success("done")
	r.Warning("careful")
	r.Error("broken")
	r.Header(1, "Runs")

	assert.Equal(t, "✓ done\n! careful\n✗ broken\n", errOut.String())
	assert.Equal(t, "Runs\n====\n", out.String())
}

func TestStyles_PlainWithoutTTY(t *testing.T) {
	styles := NewStyles(&bytes.Buffer{}, false)

	for _, state := range []string{"COMPLETED", "ERROR", "RUNNING", "UNKNOWN"} {
		assert.Equal(t, state, styles.State(state))
	}
	assert.Equal(t, "title", styles.Header1.Render("title"))
}
