package http

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	// Data is the decoded body: a JSON value when the body is valid JSON,
	// otherwise the body as a string. It is nil for an empty body.
	Data     any
	Duration time.Duration
}

func decodeData(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return gjson.ParseBytes(body).Value()
	}
	return string(body)
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Get reads a value from a JSON body using gjson path syntax.
func (r *Response) Get(path string) (any, bool) {
	if !gjson.ValidBytes(r.Body) {
		return nil, false
	}
	result := gjson.GetBytes(r.Body, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
