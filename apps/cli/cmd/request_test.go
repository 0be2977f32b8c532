package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitfwd/packages/core/env"
	"github.com/abdul-hamid-achik/hitfwd/packages/http"
	"github.com/abdul-hamid-achik/hitfwd/packages/mock"
	"github.com/abdul-hamid-achik/hitfwd/packages/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAdapter() *mock.Adapter {
	a := mock.NewAdapter()
	a.OnGet("/next?q=error").Reply(200, map[string]any{"msg": "ok"})
	a.OnGet("/notfound").Reply(404, map[string]any{"msg": "Not found"})
	a.OnGet("/users/42").Reply(200, map[string]any{"id": 42, "name": "ada"})
	a.OnPost("/uploadfile").Reply(200, map[string]any{"msg": "Success"})
	a.OnGet("/timeoutPath").Timeout()
	return a
}

func baseOptions(a *mock.Adapter, path string) *requestOptions {
	return &requestOptions{
		Path:      path,
		Method:    "GET",
		BaseURL:   "http://api.test",
		Output:    "console",
		NoColor:   true,
		Transport: a,
	}
}

func TestRunRequest_Success(t *testing.T) {
	a := newMockAdapter()
	opts := baseOptions(a, "/next")
	opts.Query = []string{"q=error"}

	var stdout, stderr bytes.Buffer
	err := runRequest(context.Background(), &stdout, &stderr, opts)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "200 OK")
	assert.Contains(t, stdout.String(), `"msg": "ok"`)
	require.Len(t, a.History(), 1)
	assert.Equal(t, "http://api.test/next?q=error", a.History()[0].URL)
}

func TestRunRequest_HTTPErrorExitCode(t *testing.T) {
	opts := baseOptions(newMockAdapter(), "/notfound")
	opts.Output = "json"

	var stdout, stderr bytes.Buffer
	err := runRequest(context.Background(), &stdout, &stderr, opts)

	require.Error(t, err)
	assert.Equal(t, ExitHTTPError, exitCodeFor(err))
	assert.True(t, http.IsHTTPStatus(err, 404))

	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.True(t, ee.reported, "formatter output must not be repeated on stderr")

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "ERR_BAD_REQUEST", out["code"])
}

func TestRunRequest_TimeoutExitCode(t *testing.T) {
	opts := baseOptions(newMockAdapter(), "/timeoutPath")
	opts.Output = "json"

	var stdout, stderr bytes.Buffer
	err := runRequest(context.Background(), &stdout, &stderr, opts)

	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, exitCodeFor(err))

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "ECONNABORTED", out["code"])
	assert.Equal(t, true, out["fromClient"])
	assert.Nil(t, out["response"])
}

func TestRunRequest_DataFileSentVerbatim(t *testing.T) {
	a := newMockAdapter()
	path := filepath.Join(t.TempDir(), "niceFamilyPicture.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0x00, 0x01}, 0o644))

	opts := baseOptions(a, "/uploadfile")
	opts.Method = "post"
	opts.DataFile = path

	var stdout, stderr bytes.Buffer
	require.NoError(t, runRequest(context.Background(), &stdout, &stderr, opts))

	history := a.History()
	require.Len(t, history, 1)
	assert.Equal(t, "POST", history[0].Method)
	assert.Equal(t, []byte{0xff, 0xd8, 0x00, 0x01}, history[0].Body)
}

func TestRunRequest_GetPathWithPlaceholders(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("USER_ID=42\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("USER_ID") })

	opts := baseOptions(newMockAdapter(), "/users/{{USER_ID}}")
	opts.EnvFile = envFile
	opts.Get = "name"

	var stdout, stderr bytes.Buffer
	require.NoError(t, runRequest(context.Background(), &stdout, &stderr, opts))
	assert.Equal(t, "ada\n", stdout.String())

	opts.Get = "missing"
	stdout.Reset()
	err := runRequest(context.Background(), &stdout, &stderr, opts)
	require.Error(t, err)
	assert.Equal(t, ExitHTTPError, exitCodeFor(err))
}

func TestRunRequest_Schema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "user.schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object","required":["email"]}`), 0o644))

	opts := baseOptions(newMockAdapter(), "/users/42")
	opts.Schema = schemaPath

	var stdout, stderr bytes.Buffer
	err := runRequest(context.Background(), &stdout, &stderr, opts)

	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err))
	assert.Equal(t, ExitHTTPError, exitCodeFor(err))
}

func TestRunRequest_UsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *requestOptions)
		code   int
	}{
		{"data and data-file", func(o *requestOptions) { o.Data = "x"; o.DataFile = "y" }, ExitUsageError},
		{"bad query", func(o *requestOptions) { o.Query = []string{"novalue"} }, ExitUsageError},
		{"bad timeout", func(o *requestOptions) { o.Timeout = "soon" }, ExitUsageError},
		{"bad output", func(o *requestOptions) { o.Output = "xml" }, ExitUsageError},
		{"missing env file", func(o *requestOptions) { o.EnvFile = "/nonexistent/.env" }, ExitConfigError},
		{"missing config", func(o *requestOptions) { o.ConfigPath = "/nonexistent/.hitfwd.yaml" }, ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions(newMockAdapter(), "/next")
			tt.modify(opts)

			var stdout, stderr bytes.Buffer
			err := runRequest(context.Background(), &stdout, &stderr, opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCodeFor(err))

			var ee *exitError
			require.ErrorAs(t, err, &ee)
			assert.False(t, ee.reported)
		})
	}
}

func TestBuildRequestConfig_JSONData(t *testing.T) {
	opts := &requestOptions{Method: "post", Data: `{"name":"{{name}}"}`}
	resolver := env.NewResolver()
	resolver.SetVariable("name", "ada")

	cfg, err := buildRequestConfig(opts, resolver)
	require.NoError(t, err)

	assert.Equal(t, "POST", cfg.Method)
	assert.Equal(t, json.RawMessage(`{"name":"ada"}`), cfg.Data)

	opts.Data = "plain text"
	cfg, err = buildRequestConfig(opts, resolver)
	require.NoError(t, err)
	assert.Equal(t, "plain text", cfg.Data)
}

func TestParseKeyValues(t *testing.T) {
	got, err := parseKeyValues([]string{"key=value", "empty=", "eq=a=b"}, "=")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "value", "empty": "", "eq": "a=b"}, got)

	got, err = parseKeyValues([]string{"Authorization: Bearer x"}, ":")
	require.NoError(t, err)
	assert.Equal(t, "Bearer x", got["Authorization"])

	_, err = parseKeyValues([]string{"=value"}, "=")
	assert.Error(t, err)

	got, err = parseKeyValues(nil, "=")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, ExitSuccess},
		{"explicit", withExitCode(ExitConfigError, errors.New("x")), ExitConfigError},
		{"http status", &http.Error{Code: http.CodeBadResponse, Response: &http.Response{StatusCode: 500}}, ExitHTTPError},
		{"timeout", &http.Error{Code: http.CodeTimeout}, ExitNetworkError},
		{"refused", &http.Error{Code: http.CodeConnRefused}, ExitNetworkError},
		{"bad option", &http.Error{Code: http.CodeBadOptionValue}, ExitUsageError},
		{"schema", &schema.ValidationError{Violations: []string{"x"}}, ExitHTTPError},
		{"other", errors.New("unknown flag"), ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCodeFor(tt.err))
		})
	}
}
