// Package prompt implements the interactive decision channel on a terminal:
// the ranked candidate table, selection input and the final confirmation.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
)

var numberPrinter = message.NewPrinter(language.English)

// Terminal asks the user on an interactive terminal. Prompts go to stderr so
// stdout stays clean for command output.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithInput replaces the input stream. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(t *Terminal) {
		t.in = bufio.NewReader(r)
	}
}

// WithOutput replaces the prompt output stream. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(t *Terminal) {
		t.out = w
	}
}

// NewTerminal creates a terminal-backed choice provider.
func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Choose renders the ranked candidates and reads a 1-based selection. Blank
// input picks the best match, "q" cancels, anything else reprompts.
func (t *Terminal) Choose(ctx context.Context, candidates []*model.ScoredCandidate) (int, error) {
	t.renderTable(candidates)

	for {
		fmt.Fprintf(t.out, "Select an extension [1-%d] (default 1, q to cancel): ", len(candidates))
		line, err := t.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, types.ErrCancelled
			}
			return 0, goerr.Wrap(err, "failed to read selection")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return 0, nil
		}
		if strings.EqualFold(line, "q") || strings.EqualFold(line, "quit") {
			return 0, types.ErrCancelled
		}

		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(candidates) {
			fmt.Fprintf(t.out, "Please enter a number between 1 and %d\n", len(candidates))
			continue
		}
		return idx - 1, nil
	}
}

// Confirm shows the full candidate detail and asks for a default-yes answer.
func (t *Terminal) Confirm(ctx context.Context, choice *model.ScoredCandidate) (bool, error) {
	t.renderDetail(choice)

	for {
		fmt.Fprint(t.out, "Download this extension? [Y/n]: ")
		line, err := t.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, types.ErrCancelled
			}
			return false, goerr.Wrap(err, "failed to read confirmation")
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, `Please answer "y" or "n"`)
	}
}

// ReadTerm asks for a search term when none was given on the command line.
func (t *Terminal) ReadTerm(ctx context.Context) (string, error) {
	fmt.Fprint(t.out, "Extension name: ")
	line, err := t.readLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", types.ErrCancelled
		}
		return "", goerr.Wrap(err, "failed to read extension name")
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) renderTable(candidates []*model.ScoredCandidate) {
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tEXTENSION\tPUBLISHER\tINSTALLS\tRATING\tDESCRIPTION")
	for i, sc := range candidates {
		c := sc.Candidate
		fmt.Fprintf(w, "%d\t%.1f\t%s (%s)\t%s\t%s\t%.1f\t%s\n",
			i+1, sc.Score, c.DisplayName, c.ID, c.Publisher,
			numberPrinter.Sprintf("%d", c.Statistics.Installs()),
			c.Statistics.AverageRating(),
			excerpt(c.Description, 48),
		)
	}
	w.Flush()
}

func (t *Terminal) renderDetail(sc *model.ScoredCandidate) {
	c := sc.Candidate
	fmt.Fprintf(t.out, "\nSelected: %s (%s)\n", c.DisplayName, c.UniqueID())
	if v, ok := c.Latest(); ok {
		fmt.Fprintf(t.out, "  Version:   %s\n", v.Version)
	}
	fmt.Fprintf(t.out, "  Publisher: %s\n", c.Publisher)
	fmt.Fprintf(t.out, "  Installs:  %s\n", numberPrinter.Sprintf("%d", c.Statistics.Installs()))
	fmt.Fprintf(t.out, "  Rating:    %.1f (%s ratings)\n",
		c.Statistics.AverageRating(), numberPrinter.Sprintf("%d", c.Statistics.RatingCount()))
	if c.LastUpdated != "" {
		fmt.Fprintf(t.out, "  Updated:   %s\n", c.LastUpdated)
	}
	if c.Description != "" {
		fmt.Fprintf(t.out, "  %s\n", c.Description)
	}
}

// readLine returns one input line. A final line without a trailing newline
// still counts; the next read reports EOF.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	// An interrupt while a dialog is open counts as the user declining.
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", types.ErrCancelled
		}
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
