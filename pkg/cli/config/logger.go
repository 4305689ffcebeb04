package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

// Logger holds logging configuration
type Logger struct {
	Level       string
	Verbose     bool
	NoColor     bool
	File        string
	FileMaxSize int
	FileBackups int
}

// Flags returns CLI flags for logging configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warning, error, critical)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("VSGET_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Shortcut for --log-level debug",
			Destination: &c.Verbose,
			Sources:     cli.EnvVars("VSGET_VERBOSE"),
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored console output",
			Destination: &c.NoColor,
			Sources:     cli.EnvVars("VSGET_NO_COLOR"),
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "Also append logs to this file with size-based rotation",
			Destination: &c.File,
			Sources:     cli.EnvVars("VSGET_LOG_FILE"),
		},
		&cli.IntFlag{
			Name:        "log-file-size",
			Usage:       "Rotate the log file past this many bytes",
			Value:       logging.DefaultMaxFileSize,
			Destination: &c.FileMaxSize,
			Sources:     cli.EnvVars("VSGET_LOG_FILE_SIZE"),
		},
		&cli.IntFlag{
			Name:        "log-file-backups",
			Usage:       "Rotated log files to keep",
			Value:       logging.DefaultBackups,
			Destination: &c.FileBackups,
			Sources:     cli.EnvVars("VSGET_LOG_FILE_BACKUPS"),
		},
	}
}

// Configure builds the logger stack: a colored console sink, fanned out with
// a rotating file sink when a log file is set. The returned closer releases
// the file sink.
func (c *Logger) Configure() (logging.Logger, func(), error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "invalid log level", goerr.T(types.TagValidation))
	}
	if c.Verbose {
		level = logging.LevelDebug
	}

	console := logging.NewConsole(
		logging.WithMinLevel(level),
		logging.WithColor(!c.NoColor),
	)
	if c.File == "" {
		return console, func() {}, nil
	}

	file, err := logging.NewFile(c.File,
		logging.WithMaxFileSize(int64(c.FileMaxSize)),
		logging.WithBackups(c.FileBackups),
	)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFanout(console, file), func() { _ = file.Close() }, nil
}
