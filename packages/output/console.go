package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/abdul-hamid-achik/hitfwd/packages/http"
	"github.com/fatih/color"
)

// maxBodyLen bounds the body printed for error responses
const maxBodyLen = 2048

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatResponse prints the status line, headers in verbose mode, and the
// body. JSON bodies are indented.
func (f *ConsoleFormatter) FormatResponse(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	var status string
	switch {
	case resp.IsSuccess():
		status = green(resp.Status)
	case resp.IsClientError():
		status = yellow(resp.Status)
	case resp.IsServerError():
		status = red(resp.Status)
	default:
		status = cyan(resp.Status)
	}
	fmt.Fprintf(f.writer, "%s %s\n", bold(status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose && len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(k), resp.Headers[k])
		}
	}

	if len(resp.Body) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", prettyBody(resp.Body, -1))
	}
	return nil
}

// FormatError prints the error and, when the server answered, the status and
// a bounded copy of the body.
func (f *ConsoleFormatter) FormatError(err error) error {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)

	herr, ok := http.AsError(err)
	if !ok {
		return nil
	}
	fmt.Fprintf(f.writer, "  %s %s\n", yellow("code:"), herr.Code)
	if herr.Response != nil {
		fmt.Fprintf(f.writer, "  %s %s\n", yellow("status:"), herr.Response.Status)
		if len(herr.Response.Body) > 0 {
			fmt.Fprintf(f.writer, "\n%s\n", prettyBody(herr.Response.Body, maxBodyLen))
		}
	}
	return nil
}

func prettyBody(body []byte, maxLen int) string {
	var buf bytes.Buffer
	out := body
	if json.Indent(&buf, body, "", "  ") == nil {
		out = buf.Bytes()
	}
	if maxLen >= 0 && len(out) > maxLen {
		return string(out[:maxLen]) + "..."
	}
	return string(out)
}
