// Package output provides the operator-facing console: timestamped,
// severity-tagged lines (info/warn/error/success) printed to stderr.
// Styling degrades to plain text when the stream is piped or NO_COLOR
// is set. Structured diagnostics go through pkg/logging instead.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"

	"github.com/radikalliberal/devcontainer/pkg/ui"
)

// Console writes severity-tagged operator messages. The zero value is not
// usable; construct with New or use the package-level Default.
type Console struct {
	w      io.Writer
	format ui.Format
	now    func() time.Time
}

// Default is the process-wide console, writing to stderr with auto-detected
// formatting.
var Default = New(os.Stderr, ui.DetectFormat(os.Stderr))

// New creates a Console writing to w with the given format. FormatAuto is
// resolved to plain text since w may not be a terminal.
func New(w io.Writer, format ui.Format) *Console {
	if format == ui.FormatAuto {
		format = ui.FormatText
	}
	return &Console{w: w, format: format, now: time.Now}
}

type severity struct {
	tag   string
	style *pterm.Style
}

var (
	sevInfo    = severity{tag: "INFO", style: pterm.NewStyle(pterm.FgCyan)}
	sevWarn    = severity{tag: "WARN", style: pterm.NewStyle(pterm.FgYellow, pterm.Bold)}
	sevError   = severity{tag: "ERROR", style: pterm.NewStyle(pterm.FgRed, pterm.Bold)}
	sevSuccess = severity{tag: "OK", style: pterm.NewStyle(pterm.FgGreen, pterm.Bold)}
)

func (c *Console) line(sev severity, format string, args ...interface{}) {
	stamp := c.now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)

	tag := sev.tag
	if c.format == ui.FormatTerminal {
		tag = sev.style.Sprint(sev.tag)
	}
	fmt.Fprintf(c.w, "[%s] %-5s %s\n", stamp, tag, msg)
}

// Info prints an informational message
func (c *Console) Info(format string, args ...interface{}) {
	c.line(sevInfo, format, args...)
}

// Warn prints a warning message
func (c *Console) Warn(format string, args ...interface{}) {
	c.line(sevWarn, format, args...)
}

// Error prints an error message
func (c *Console) Error(format string, args ...interface{}) {
	c.line(sevError, format, args...)
}

// Success prints a success message
func (c *Console) Success(format string, args ...interface{}) {
	c.line(sevSuccess, format, args...)
}

// Info prints an informational message on the default console
func Info(format string, args ...interface{}) { Default.Info(format, args...) }

// Warn prints a warning message on the default console
func Warn(format string, args ...interface{}) { Default.Warn(format, args...) }

// Error prints an error message on the default console
func Error(format string, args ...interface{}) { Default.Error(format, args...) }

// Success prints a success message on the default console
func Success(format string, args ...interface{}) { Default.Success(format, args...) }
