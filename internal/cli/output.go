package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/pgscan/pkg/pgscan"
	"golang.org/x/term"
)

// Color palette - keeping it minimal and accessible.
var (
	colorPrimary = lipgloss.Color("39")  // Blue
	colorMuted   = lipgloss.Color("240") // Dark gray
	colorWarning = lipgloss.Color("214") // Orange
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid argument %q for --format: expected %s or %s", format, formatText, formatJSON)
	}
}

// isStyled reports whether w is a terminal that should receive styled
// output.
//
// Returns false if:
//   - w is not a file (buffers, pipes wrapped by tests)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - CI is set (common CI/CD convention)
//   - the file is not a terminal (redirected or piped output)
func isStyled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// printResources writes resources as tab-separated "name location" lines,
// a styled listing on terminals, or a JSON array.
func printResources(w io.Writer, pkg string, resources []pgscan.Resource, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resources)
	}

	if !isStyled(w) {
		for _, r := range resources {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Name, r.Location); err != nil {
				return err
			}
		}
		return nil
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d resource(s)", pkg, len(resources))))
	b.WriteString("\n")
	for _, r := range resources {
		b.WriteString("  " + nameStyle.Render(r.Name) + "  " + mutedStyle.Render(r.Location) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// printWarning writes a highlighted warning line to w.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isStyled(w) {
		msg = warningStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}
