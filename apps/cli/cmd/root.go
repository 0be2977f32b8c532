package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	envFileFlag string
	verboseFlag bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "hitfwd",
	Short: "Forward HTTP requests. Nothing added.",
	Long: `hitfwd sends a single HTTP request built from a path, a method, a body
and query parameters, and prints the response exactly as the server sent it.
Non-2xx responses and transport failures are reported with a stable error code.

It also ships a fixture-driven mock server for local development.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(execute(os.Args[1:]))
}

// execute runs the root command and returns the process exit code. Errors
// are printed to stderr unless a formatter already reported them.
func execute(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if !errors.As(err, &ee) || !ee.reported {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitCodeFor(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITFWD_CONFIG", ""), "Path to config file (env: HITFWD_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", getEnvString("HITFWD_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITFWD_ENV_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output with debug logs")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("NO_COLOR", false), "Disable colored output (env: NO_COLOR)")

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
