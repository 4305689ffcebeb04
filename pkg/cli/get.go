package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/vsget/pkg/cli/config"
	"github.com/m-mizutani/vsget/pkg/controller/prompt"
	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/infra/marketplace"
	"github.com/m-mizutani/vsget/pkg/usecase"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

func cmdGet(fileCfg *config.File) *cli.Command {
	var (
		mktCfg    config.Marketplace
		outputDir string
		version   string
		yes       bool
	)

	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"o"},
			Usage:       "Directory to save the package into",
			Value:       ".",
			Destination: &outputDir,
			Sources:     cli.EnvVars("VSGET_OUTPUT_DIR"),
		},
		&cli.StringFlag{
			Name:        "extension-version",
			Usage:       "Exact version to download instead of the latest",
			Destination: &version,
		},
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Skip prompts and take the best match",
			Destination: &yes,
			Sources:     cli.EnvVars("VSGET_YES"),
		},
	}, mktCfg.Flags()...)

	return &cli.Command{
		Name:      "get",
		Aliases:   []string{"g"},
		Usage:     "Search for an extension and download its package",
		ArgsUsage: "[extension]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			terminal := prompt.NewTerminal()
			interactive := isInteractive()

			term := c.Args().First()
			if term == "" {
				if !interactive {
					return goerr.New("extension name is required",
						goerr.T(types.TagValidation))
				}
				read, err := terminal.ReadTerm(ctx)
				if err != nil {
					return err
				}
				term = read
			}

			opts := []usecase.RetrieverOption{
				usecase.WithSearchPageSize(mktCfg.PageSize),
				usecase.WithProgress(newProgressRenderer(os.Stderr)),
			}
			if w, ok := fileCfg.ScoringWeights(); ok {
				opts = append(opts, usecase.WithScorer(usecase.NewScorer(usecase.WithWeights(w))))
			}
			if interactive && !yes {
				opts = append(opts, usecase.WithChoiceProvider(terminal))
			}

			client := marketplace.New(mktCfg.Options()...)
			retriever := usecase.NewRetriever(client, opts...)

			result, err := retriever.Download(ctx, &model.DownloadRequest{
				Term:      term,
				Version:   version,
				DestDir:   outputDir,
				AssumeYes: yes,
			})
			if err != nil {
				return err
			}

			logger.Info("Successfully downloaded to: " + result.Path)
			logger.Debug(fmt.Sprintf("Received %s in %s",
				formatBytes(result.Bytes), result.Duration.Round(time.Millisecond)))
			return nil
		},
	}
}

// isInteractive reports whether stdin is attached to a terminal.
func isInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
