// Package printer formats fcsctl output: coloured messages, status lines,
// device tables and dispatch history.
package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// DisableColor turns colours off, as requested by --no-color or NO_COLOR.
func DisableColor() {
	color.NoColor = true
}

// Printer writes to an output and an error stream.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// New returns a printer on stdout and stderr.
func New() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr}
}

// Success prints a green message with a check mark.
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.Out, "✓ %s\n", fmt.Sprintf(format, a...)) //nolint:errcheck // terminal output
}

// Warning prints a yellow message.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.Err, "⚠ %s\n", fmt.Sprintf(format, a...)) //nolint:errcheck // terminal output
}

// Step prints a cyan progress message.
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.Out, "→ %s\n", fmt.Sprintf(format, a...)) //nolint:errcheck // terminal output
}

// Println prints a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.Out, a...) //nolint:errcheck // terminal output
}

// Error prints title in red followed by the explanation and suggestions,
// and returns an error carrying only the title for cobra.
func (p *Printer) Error(title, explanation string, suggestions ...string) error {
	red.Fprintf(p.Err, "%s\n", title) //nolint:errcheck // terminal output
	if explanation != "" {
		fmt.Fprintf(p.Err, "\n%s\n", explanation) //nolint:errcheck // terminal output
	}
	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(p.Err, "\n%s\n", suggestions[0]) //nolint:errcheck // terminal output
	default:
		fmt.Fprintf(p.Err, "\nEither:\n") //nolint:errcheck // terminal output
		for i, s := range suggestions {
			fmt.Fprintf(p.Err, "  %d. %s\n", i+1, s) //nolint:errcheck // terminal output
		}
	}
	return fmt.Errorf("%s", title)
}

// StatusLines prints "key = value" lines with the key in cyan.
func (p *Printer) StatusLines(lines []string) {
	for _, line := range lines {
		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			p.Println(line)
			continue
		}
		fmt.Fprintf(p.Out, "%s = %s\n", cyan.Sprint(key), value) //nolint:errcheck // terminal output
	}
}

// DevTypes prints a devname/devtype table sorted by device name.
func (p *Printer) DevTypes(devtypes map[string]string) {
	names := make([]string, 0, len(devtypes))
	for name := range devtypes {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tTYPE") //nolint:errcheck // terminal output
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, devtypes[name]) //nolint:errcheck // terminal output
	}
	w.Flush() //nolint:errcheck // terminal output
}

// HistoryRow is one line of the history table.
type HistoryRow struct {
	RequestID string
	CreatedAt time.Time
	Outcome   string
	Elements  int
	Duration  time.Duration
	Detail    string
}

// History prints dispatch history rows. Failed rows are red.
func (p *Printer) History(rows []HistoryRow) {
	if len(rows) == 0 {
		faint.Fprintln(p.Out, "no dispatches recorded") //nolint:errcheck // terminal output
		return
	}
	w := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tREQUEST\tOUTCOME\tELEMENTS\tDURATION\tDETAIL") //nolint:errcheck // terminal output
	for _, r := range rows {
		outcome := green.Sprint(r.Outcome)
		if r.Outcome != "success" {
			outcome = red.Sprint(r.Outcome)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", //nolint:errcheck // terminal output
			r.CreatedAt.Local().Format(time.DateTime),
			shortID(r.RequestID),
			outcome,
			r.Elements,
			r.Duration.Round(time.Millisecond),
			r.Detail,
		)
	}
	w.Flush() //nolint:errcheck // terminal output
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
