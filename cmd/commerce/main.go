// Command commerce queries a commerce platform project from the shell.
//
//	commerce [-config file] [-project key] [-v] <command> [flags] [args]
//
// Connection settings come from the COMMERCE_* environment variables or a
// YAML file given with -config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/birbparty/commerce-sdk/internal/telemetry"
	"github.com/birbparty/commerce-sdk/sdk"
)

const usage = `usage: commerce [global flags] <command> [flags] [args]

commands:
  project                        show the project settings
  categories [-where p] [-sort s] [-limit n]
                                 query categories
  category <key>                 get one category by key
  product <key>                  get one product by key
  search [-lang l] [-min m] [-max m] [-facet path] [-limit n] [text]
                                 full text product search
  object get <container> <key>   read a custom object
  object put <container> <key> <json>
                                 create or replace a custom object

global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("commerce", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configFile := fs.String("config", "", "YAML configuration file")
	project := fs.String("project", "", "project key, overrides the configuration")
	apiURL := fs.String("api-url", "", "API base URL, overrides the configuration")
	verbose := fs.Bool("v", false, "log every request")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logger := newLogger(stderr, *verbose)

	config, err := loadConfig(*configFile)
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		return 1
	}
	if *project != "" {
		config.WithProject(*project)
	}
	if *apiURL != "" {
		config.WithAPIURL(*apiURL)
	}
	config.WithLogger(logger)
	if *verbose {
		config.WithObserver(telemetry.NewLoggingObserver(logger))
	}

	client, err := sdk.NewClient(config)
	if err != nil {
		logger.WithError(err).Error("Failed to create client")
		return 1
	}
	defer client.Close()

	cmd := &commander{client: client, out: stdout}
	if err := cmd.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, ue)
			fs.Usage()
			return 2
		}
		logger.WithError(err).Error("Command failed")
		return 1
	}
	return 0
}

func loadConfig(path string) (*sdk.Config, error) {
	if path == "" {
		return sdk.ConfigFromEnv(), nil
	}
	return sdk.LoadConfigFile(path)
}

func newLogger(out io.Writer, verbose bool) *logrus.Logger {
	cfg := telemetry.NewConfigFromEnv()
	cfg.LogFormat = "text"
	if verbose {
		cfg.LogLevel = "debug"
	}
	logger := telemetry.NewLogger(cfg)
	logger.SetOutput(out)
	return logger
}
