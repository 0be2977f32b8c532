package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/hitfwd/packages/http"
)

// Formatter writes a response or a request error.
type Formatter interface {
	FormatResponse(resp *http.Response) error
	FormatError(err error) error
}

// Format names accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns the formatter for the named format.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}
}
