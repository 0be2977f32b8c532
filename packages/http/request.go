package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	Data        any
	Timeout     time.Duration
	QueryParams map[string]string
	Multipart   []*MultipartField
	BaseDir     string // Base directory for resolving relative file paths
}

type MultipartFieldType int

const (
	MultipartFieldValue MultipartFieldType = iota
	MultipartFieldFile
)

// MultipartField is a single part of a multipart/form-data body
type MultipartField struct {
	Type  MultipartFieldType
	Name  string
	Value string
	Path  string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetData(data any) *Request {
	r.Data = data
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) AddFile(name, path string) *Request {
	r.Multipart = append(r.Multipart, &MultipartField{Type: MultipartFieldFile, Name: name, Path: path})
	return r
}

func (r *Request) AddField(name, value string) *Request {
	r.Multipart = append(r.Multipart, &MultipartField{Type: MultipartFieldValue, Name: name, Value: value})
	return r
}

func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// encodeBody turns Request.Data into a request body. Strings, byte slices and
// readers are sent as-is; url.Values is form encoded; anything else is JSON.
func encodeBody(data any) (io.Reader, string, error) {
	switch v := data.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(v), "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case io.Reader:
		return v, "", nil
	case url.Values:
		return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("encode request data: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}
