package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/vsget/pkg/cli/config"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

// Process exit codes. Each error class gets its own code so scripts can
// branch on the failure kind.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitValidation = 2
	ExitPermission = 3
	ExitNetwork    = 4
	ExitNotFound   = 5
	ExitCancelled  = 6
)

// ExitCode maps an error to its process exit code. Timeouts share the
// network code, empty downloads share the not-found code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case types.IsCancelled(err):
		return ExitCancelled
	case types.HasTag(err, types.TagValidation):
		return ExitValidation
	case types.HasTag(err, types.TagPermission):
		return ExitPermission
	case types.HasTag(err, types.TagTimeout):
		return ExitNetwork
	case types.HasTag(err, types.TagNetwork):
		return ExitNetwork
	case types.HasTag(err, types.TagNotFound):
		return ExitNotFound
	case types.HasTag(err, types.TagEmptyFile):
		return ExitNotFound
	default:
		return ExitError
	}
}

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileCfg, err := seedFileConfig(args)
	if err != nil {
		logging.Default().Error(fmt.Sprintf("Error: %s", err.Error()))
		return err
	}

	var loggerCfg config.Logger
	var logger logging.Logger
	closer := func() {}

	app := &cli.Command{
		Name:    types.AppName,
		Usage:   "Download VS Code extensions from the marketplace",
		Version: types.Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				Sources: cli.EnvVars("VSGET_CONFIG"),
			},
		}, loggerCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, closer, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			logging.SetDefault(logger)
			ctx = logging.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdGet(fileCfg),
			cmdSearch(fileCfg),
			cmdList(),
		},
	}

	err = app.Run(ctx, args)
	if err != nil {
		if logger == nil {
			logger = logging.Default()
		}
		if types.IsCancelled(err) {
			logger.Info("Cancelled by user")
		} else {
			logger.Error(fmt.Sprintf("Error: %s", err.Error()))
			logger.Debug(fmt.Sprintf("%+v", err))
		}
	}
	closer()
	return err
}

// seedFileConfig loads the TOML config file and exports its flag-backed
// settings as VSGET_* environment variables ahead of flag parsing. Real
// environment variables and flags keep precedence over the file.
func seedFileConfig(args []string) (*config.File, error) {
	f, err := config.Load(configPath(args))
	if err != nil {
		return nil, err
	}
	for key, value := range f.Environ() {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, goerr.Wrap(err, "failed to export config setting", goerr.V("key", key))
		}
	}
	return f, nil
}

// configPath scans raw arguments for the config flag ahead of flag parsing.
func configPath(args []string) string {
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		}
	}
	return os.Getenv("VSGET_CONFIG")
}
