package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitfwd/packages/core/config"
	"github.com/abdul-hamid-achik/hitfwd/packages/core/env"
	"github.com/abdul-hamid-achik/hitfwd/packages/http"
	"github.com/abdul-hamid-achik/hitfwd/packages/logger"
	"github.com/abdul-hamid-achik/hitfwd/packages/output"
	"github.com/abdul-hamid-achik/hitfwd/packages/schema"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var requestCmd = &cobra.Command{
	Use:   "request <path>",
	Short: "Forward a single HTTP request",
	Long: `Send one request and print the response unchanged.

The path is resolved against the configured base URL. Query parameters are
appended as key=value pairs joined by "&". Placeholders such as {{name}},
{{$ENV_VAR}}, {{uuid()}} and {{timestamp()}} are expanded in the path,
headers, query values and body.

Examples:
  hitfwd request /next -q q=error
  hitfwd request /users -X POST -d '{"name":"ada"}'
  hitfwd request /uploadfile -X POST --data-file ./niceFamilyPicture.jpg
  hitfwd request /users/1 --get name --base-url http://localhost:3000
  hitfwd request /users --schema users.schema.json --output json`,
	Args: cobra.ExactArgs(1),
	RunE: requestCommand,
}

var (
	methodFlag   string
	dataFlag     string
	dataFileFlag string
	queryFlags   []string
	headerFlags  []string
	timeoutFlag  string
	baseURLFlag  string
	schemaFlag   string
	outputFlag   string
	getFlag      string
)

func init() {
	requestCmd.Flags().StringVarP(&methodFlag, "method", "X", "GET", "HTTP method")
	requestCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body; valid JSON is sent as application/json")
	requestCmd.Flags().StringVar(&dataFileFlag, "data-file", "", "Send the file contents verbatim as the request body")
	requestCmd.Flags().StringArrayVarP(&queryFlags, "query", "q", nil, "Query parameter as key=value (repeatable)")
	requestCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Header as 'Name: value' (repeatable)")
	requestCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HITFWD_REQUEST_TIMEOUT", ""), "Request timeout (e.g., 500ms, 30s)")
	requestCmd.Flags().StringVar(&baseURLFlag, "base-url", "", "Base URL that the path is resolved against")
	requestCmd.Flags().StringVar(&schemaFlag, "schema", "", "Validate the response body against a JSON Schema file")
	requestCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HITFWD_OUTPUT", "console"), "Output format: console, json (env: HITFWD_OUTPUT)")
	requestCmd.Flags().StringVar(&getFlag, "get", "", "Print only the value at this gjson path of the response body")
}

// requestOptions is the parsed form of the request command's flags
type requestOptions struct {
	Path       string
	Method     string
	Data       string
	DataFile   string
	Query      []string
	Headers    []string
	Timeout    string
	BaseURL    string
	Schema     string
	Output     string
	Get        string
	ConfigPath string
	EnvFile    string
	Verbose    bool
	NoColor    bool

	// Transport replaces the network transport; used by tests
	Transport nethttp.RoundTripper
}

func requestCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runRequest(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), &requestOptions{
		Path:       args[0],
		Method:     methodFlag,
		Data:       dataFlag,
		DataFile:   dataFileFlag,
		Query:      queryFlags,
		Headers:    headerFlags,
		Timeout:    timeoutFlag,
		BaseURL:    baseURLFlag,
		Schema:     schemaFlag,
		Output:     outputFlag,
		Get:        getFlag,
		ConfigPath: configFlag,
		EnvFile:    envFileFlag,
		Verbose:    verboseFlag,
		NoColor:    noColorFlag,
	})
}

func runRequest(ctx context.Context, stdout, stderr io.Writer, opts *requestOptions) error {
	if opts.Data != "" && opts.DataFile != "" {
		return withExitCode(ExitUsageError, fmt.Errorf("--data and --data-file are mutually exclusive"))
	}

	var fileVars map[string]string
	if opts.EnvFile != "" {
		vars, err := env.LoadAndExportDotEnv(opts.EnvFile)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		fileVars = vars
	}

	cfg, err := loadRequestConfig(opts)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	log := logger.InitLogger(cfg.GetVerbose(), stderr)

	formatter, err := output.New(opts.Output, stdout, cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		log.Warn(fmt.Sprintf(format, args...))
	})
	for k, v := range fileVars {
		resolver.SetVariable(k, v)
	}

	reqCfg, err := buildRequestConfig(opts, resolver)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	clientOpts := append(cfg.ClientOptions(), http.WithLogger(log))
	if opts.Transport != nil {
		clientOpts = append(clientOpts, http.WithTransport(opts.Transport))
	}
	fwd := http.NewForwarder(http.NewClient(clientOpts...))

	log.Debug("forwarding request", "method", reqCfg.Method, "path", opts.Path, "baseURL", cfg.BaseURL)

	resp, err := fwd.Request(ctx, resolver.Resolve(opts.Path), reqCfg)
	if err != nil {
		_ = formatter.FormatError(err)
		return reportedExit(exitCodeFor(err), err)
	}

	if opts.Schema != "" {
		if err := schema.ValidateFile(opts.Schema, resp.Body); err != nil {
			_ = formatter.FormatError(err)
			if schema.IsValidationError(err) {
				return reportedExit(ExitHTTPError, err)
			}
			return reportedExit(ExitConfigError, err)
		}
	}

	if opts.Get != "" {
		value, ok := resp.Get(opts.Get)
		if !ok {
			err := fmt.Errorf("path %q not found in response body", opts.Get)
			_ = formatter.FormatError(err)
			return reportedExit(ExitHTTPError, err)
		}
		return printValue(stdout, value)
	}

	return formatter.FormatResponse(resp)
}

// loadRequestConfig layers the config file, HITFWD_* variables and flags
func loadRequestConfig(opts *requestOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err = cfg.ApplyEnv(env.LoadSystemEnv(config.EnvPrefix))
	if err != nil {
		return nil, err
	}

	overrides := &config.Config{BaseURL: opts.BaseURL}
	if opts.Verbose {
		overrides.Verbose = config.BoolPtr(true)
	}
	if opts.NoColor {
		overrides.NoColor = config.BoolPtr(true)
	}
	return cfg.Merge(overrides), nil
}

// buildRequestConfig turns flags into a RequestConfig, expanding placeholders
func buildRequestConfig(opts *requestOptions, resolver *env.Resolver) (*http.RequestConfig, error) {
	reqCfg := &http.RequestConfig{
		Method: strings.ToUpper(opts.Method),
	}

	query, err := parseKeyValues(opts.Query, "=")
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	reqCfg.Query = resolver.ResolveAll(query)

	headers, err := parseKeyValues(opts.Headers, ":")
	if err != nil {
		return nil, fmt.Errorf("invalid --header: %w", err)
	}
	reqCfg.Headers = resolver.ResolveAll(headers)

	if opts.Timeout != "" {
		d, err := time.ParseDuration(opts.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", opts.Timeout, err)
		}
		reqCfg.Timeout = d
	}

	switch {
	case opts.DataFile != "":
		b, err := os.ReadFile(opts.DataFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read --data-file: %w", err)
		}
		reqCfg.Data = b
	case opts.Data != "":
		data := resolver.Resolve(opts.Data)
		if gjson.Valid(data) {
			reqCfg.Data = json.RawMessage(data)
		} else {
			reqCfg.Data = data
		}
	}

	return reqCfg, nil
}

// parseKeyValues splits "key<sep>value" pairs. Values may be empty.
func parseKeyValues(pairs []string, sep string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, sep)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key%svalue, got %q", sep, pair)
		}
		result[key] = strings.TrimSpace(value)
	}
	return result, nil
}

// printValue prints strings bare and everything else as JSON
func printValue(w io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
