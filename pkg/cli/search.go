package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/m-mizutani/vsget/pkg/cli/config"
	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/infra/marketplace"
	"github.com/m-mizutani/vsget/pkg/usecase"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

var numberPrinter = message.NewPrinter(language.English)

func cmdSearch(fileCfg *config.File) *cli.Command {
	var mktCfg config.Marketplace

	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search the marketplace and rank matches by relevance",
		ArgsUsage: "<extension>",
		Flags:     mktCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			term := c.Args().First()
			if term == "" {
				return goerr.New("search term is required",
					goerr.T(types.TagValidation))
			}

			opts := []usecase.RetrieverOption{
				usecase.WithSearchPageSize(mktCfg.PageSize),
			}
			if w, ok := fileCfg.ScoringWeights(); ok {
				opts = append(opts, usecase.WithScorer(usecase.NewScorer(usecase.WithWeights(w))))
			}

			client := marketplace.New(mktCfg.Options()...)
			retriever := usecase.NewRetriever(client, opts...)

			scored, err := retriever.Search(ctx, term)
			if err != nil {
				return err
			}
			if len(scored) == 0 {
				logging.From(ctx).Warn("No extensions found for: " + term)
				return nil
			}

			renderScored(os.Stdout, scored)
			return nil
		},
	}
}

// renderScored prints the ranked result table.
func renderScored(w io.Writer, scored []*model.ScoredCandidate) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tEXTENSION\tPUBLISHER\tVERSION\tINSTALLS\tRATING\tUPDATED")
	for i, sc := range scored {
		cand := sc.Candidate
		version := "-"
		if latest, ok := cand.Latest(); ok {
			version = latest.Version
		}
		updated := cand.LastUpdated
		if updated == "" {
			updated = "-"
		}
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			i+1,
			sc.Score,
			cand.ID,
			cand.Publisher,
			version,
			numberPrinter.Sprintf("%d", cand.Statistics.Installs()),
			cand.Statistics.AverageRating(),
			updated,
		)
	}
	tw.Flush()
}
