package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hitfwd/packages/http"
)

// JSONResponse represents a forwarded response
type JSONResponse struct {
	Status   int               `json:"status"`
	Headers  map[string]string `json:"headers,omitempty"`
	Data     any               `json:"data"`
	Duration float64           `json:"duration"`
}

// JSONError represents a failed request. Response is null when the request
// never got an answer, e.g. on timeout.
type JSONError struct {
	Message    string        `json:"message"`
	Code       string        `json:"code,omitempty"`
	FromClient bool          `json:"fromClient"`
	Response   *JSONResponse `json:"response"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func toJSONResponse(resp *http.Response) *JSONResponse {
	if resp == nil {
		return nil
	}
	return &JSONResponse{
		Status:   resp.StatusCode,
		Headers:  resp.Headers,
		Data:     resp.Data,
		Duration: float64(resp.Duration.Milliseconds()),
	}
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) error {
	return f.encode(toJSONResponse(resp))
}

func (f *JSONFormatter) FormatError(err error) error {
	out := JSONError{Message: err.Error()}
	if herr, ok := http.AsError(err); ok {
		out.Code = herr.Code
		out.FromClient = herr.FromClient
		out.Response = toJSONResponse(herr.Response)
	}
	return f.encode(out)
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
