package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/infra/marketplace"
)

// Marketplace holds gallery connection configuration
type Marketplace struct {
	Endpoint        string
	SearchTimeout   time.Duration
	TransferTimeout time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	PageSize        int
}

// Flags returns CLI flags for gallery configuration
func (c *Marketplace) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "endpoint",
			Usage:       "Gallery API endpoint",
			Value:       marketplace.DefaultEndpoint,
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("VSGET_ENDPOINT"),
		},
		&cli.DurationFlag{
			Name:        "search-timeout",
			Usage:       "Deadline for one search attempt",
			Value:       marketplace.DefaultSearchTimeout,
			Destination: &c.SearchTimeout,
			Sources:     cli.EnvVars("VSGET_SEARCH_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:        "transfer-timeout",
			Usage:       "Deadline for the package download",
			Value:       marketplace.DefaultTransferTimeout,
			Destination: &c.TransferTimeout,
			Sources:     cli.EnvVars("VSGET_TRANSFER_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:        "retry-attempts",
			Usage:       "Attempts for one gallery operation",
			Value:       marketplace.DefaultRetryPolicy.Attempts,
			Destination: &c.RetryAttempts,
			Sources:     cli.EnvVars("VSGET_RETRY_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "retry-delay",
			Usage:       "Base delay between retries, doubled per failure",
			Value:       marketplace.DefaultRetryPolicy.BaseDelay,
			Destination: &c.RetryDelay,
			Sources:     cli.EnvVars("VSGET_RETRY_DELAY"),
		},
		&cli.IntFlag{
			Name:        "page-size",
			Usage:       "Candidates per gallery result page",
			Value:       model.DefaultPageSize,
			Destination: &c.PageSize,
			Sources:     cli.EnvVars("VSGET_PAGE_SIZE"),
		},
	}
}

// Options converts the configuration into gallery client options
func (c *Marketplace) Options() []marketplace.Option {
	return []marketplace.Option{
		marketplace.WithEndpoint(c.Endpoint),
		marketplace.WithSearchTimeout(c.SearchTimeout),
		marketplace.WithTransferTimeout(c.TransferTimeout),
		marketplace.WithRetryPolicy(marketplace.RetryPolicy{
			Attempts:  c.RetryAttempts,
			BaseDelay: c.RetryDelay,
		}),
	}
}
