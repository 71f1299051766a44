package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/cli/config"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const defaultEnvFile = ".env"

func Run(ctx context.Context, args []string, version string) error {
	if err := loadEnvFile(args); err != nil {
		logging.Default().Error("failed to load env file", "error", err)
		return err
	}

	if err := newApp(version, os.Stdout).Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

func newApp(version string, w io.Writer) *cli.Command {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var envFile string
	var closers []func()

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Load environment variables from a dotenv file",
			Value:       defaultEnvFile,
			Sources:     cli.EnvVars("LEETWATCH_ENV_FILE"),
			Destination: &envFile,
		},
	}
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "leetwatch",
		Usage:   "Track LeetCode progress of a group of users",
		Version: version,
		Writer:  w,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closeLog, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, closeLog)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Debug("Starting leetwatch",
				"version", version,
				"env_file", envFile,
				"logger", loggerCfg,
				"sentry", sentryCfg,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdStats(),
			cmdDaily(),
			cmdExport(),
		},
	}
}

// loadEnvFile applies a dotenv file before flags read their env sources.
// A missing default file is not an error.
func loadEnvFile(args []string) error {
	path, explicit := envFileFromArgs(args)
	if !explicit {
		if v := os.Getenv("LEETWATCH_ENV_FILE"); v != "" {
			path, explicit = v, true
		}
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

func envFileFromArgs(args []string) (string, bool) {
	for i, arg := range args {
		switch {
		case arg == "--":
			return defaultEnvFile, false
		case arg == "--env-file" && i+1 < len(args):
			return args[i+1], true
		case strings.HasPrefix(arg, "--env-file="):
			return strings.TrimPrefix(arg, "--env-file="), true
		}
	}
	return defaultEnvFile, false
}
