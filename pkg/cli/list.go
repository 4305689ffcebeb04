package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/vsget/pkg/cli/config"
	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/infra/marketplace"
	"github.com/m-mizutani/vsget/pkg/usecase"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

func cmdList() *cli.Command {
	var (
		mktCfg   config.Marketplace
		maxPages int
	)

	flags := append([]cli.Flag{
		&cli.IntFlag{
			Name:        "max-pages",
			Usage:       "Result pages to walk before stopping",
			Value:       10,
			Destination: &maxPages,
			Sources:     cli.EnvVars("VSGET_MAX_PAGES"),
		},
	}, mktCfg.Flags()...)

	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List marketplace extensions in gallery order",
		ArgsUsage: "[filter]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			term := c.Args().First()

			client := marketplace.New(mktCfg.Options()...)
			retriever := usecase.NewRetriever(client,
				usecase.WithSearchPageSize(mktCfg.PageSize))

			candidates, err := retriever.Enumerate(ctx, term, maxPages*mktCfg.PageSize)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				logging.From(ctx).Warn("No extensions found")
				return nil
			}

			renderCandidates(os.Stdout, mktCfg.Endpoint, candidates)
			return nil
		},
	}
}

// renderCandidates prints one line per published version: identity, version,
// install count and the direct package URL.
func renderCandidates(w io.Writer, endpoint string, candidates []*model.Candidate) {
	for _, cand := range candidates {
		installs := cand.Statistics.Installs()
		for _, v := range cand.Versions {
			url := fmt.Sprintf("%s/publishers/%s/vsextensions/%s/%s/vspackage",
				endpoint, cand.Publisher, cand.ID, v.Version)
			fmt.Fprintln(w, cand.UniqueID(), v.Version, installs, url)
		}
	}
}
