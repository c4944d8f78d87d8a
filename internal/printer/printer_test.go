package printer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	DisableColor()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &Printer{Out: out, Err: errOut}, out, errOut
}

func TestError(t *testing.T) {
	t.Run("single suggestion", func(t *testing.T) {
		p, _, errOut := newTestPrinter()
		err := p.Error("setup rejected", "lamp1: intensity 120 is above 100", "Lower the intensity")
		require.EqualError(t, err, "setup rejected")
		assert.Contains(t, errOut.String(), "lamp1: intensity 120 is above 100")
		assert.Contains(t, errOut.String(), "Lower the intensity")
		assert.NotContains(t, errOut.String(), "Either:")
	})

	t.Run("several suggestions", func(t *testing.T) {
		p, _, errOut := newTestPrinter()
		err := p.Error("no payload", "", "Pass --json", "Pass --file")
		require.EqualError(t, err, "no payload")
		assert.Contains(t, errOut.String(), "Either:\n  1. Pass --json\n  2. Pass --file\n")
	})
}

func TestMessages(t *testing.T) {
	p, out, errOut := newTestPrinter()
	p.Success("sent %d devices", 2)
	p.Step("dispatching")
	p.Warning("buffer kept")

	assert.Equal(t, "✓ sent 2 devices\n→ dispatching\n", out.String())
	assert.Equal(t, "⚠ buffer kept\n", errOut.String())
}

func TestStatusLines(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.StatusLines([]string{"lamp1.lcs.state = Operational", "garbage"})
	assert.Equal(t, "lamp1.lcs.state = Operational\ngarbage\n", out.String())
}

func TestDevTypes(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.DevTypes(map[string]string{"motor1": "motor", "lamp1": "lamp"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "lamp1"))
	assert.True(t, strings.HasPrefix(lines[2], "motor1"))
}

func TestHistory(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.History(nil)
	assert.Equal(t, "no dispatches recorded\n", out.String())

	out.Reset()
	p.History([]HistoryRow{{
		RequestID: "0f8fad5b-d9cb-469f-a165-70867728950e",
		CreatedAt: time.Now(),
		Outcome:   "failure",
		Elements:  3,
		Duration:  1500 * time.Millisecond,
		Detail:    "lamp2 not ready",
	}})
	assert.Contains(t, out.String(), "0f8fad5b ")
	assert.Contains(t, out.String(), "failure")
	assert.Contains(t, out.String(), "1.5s")
	assert.Contains(t, out.String(), "lamp2 not ready")
}
