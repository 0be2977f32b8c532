package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitfwd/packages/logger"
	"github.com/abdul-hamid-achik/hitfwd/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag  int
	mockDelayFlag string
	mockWatchFlag bool
)

var mockCmd = &cobra.Command{
	Use:   "mock <fixture|directory>...",
	Short: "Start a mock server from YAML fixtures",
	Long: `Start an HTTP mock server that answers with the routes declared in
YAML fixture files.

A fixture lists routes with a method, a path (optionally with a query that
must match exactly), a status, headers and a body. Routes can also simulate
a timeout, a dropped connection or a delay:

  routes:
    - method: GET
      path: /next?q=error
      body: {msg: ok}
    - path: /users/{{id}}
      status: 404
    - path: /slow
      timeout: true

Examples:
  hitfwd mock routes.yaml
  hitfwd mock ./fixtures/ --port 3000
  hitfwd mock routes.yaml --delay 100ms --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", 3000, "Port to run the mock server on")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockWatchFlag, "watch", "w", false, "Reload fixtures when they change")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
		}
	}

	files, err := collectFixtures(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .yaml or .yml fixtures found"))
	}

	log := logger.InitLogger(verboseFlag, cmd.ErrOrStderr())

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithVerbose(verboseFlag),
		mock.WithLogger(log),
	)

	if err := server.LoadFiles(files); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	routes := server.Routes()
	if len(routes) == 0 {
		return withExitCode(ExitConfigError, fmt.Errorf("no routes found in the provided fixtures"))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d routes from %d files\n", len(routes), len(files))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if mockWatchFlag {
		go func() {
			if err := server.Watch(ctx); err != nil {
				log.Error("fixture watcher stopped", "error", err)
			}
		}()
	}

	return server.StartWithContext(ctx)
}

// collectFixtures expands directories into the YAML files they contain
func collectFixtures(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isFixtureFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if isFixtureFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

func isFixtureFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
