// Package usecase implements the retrieval pipeline: search the gallery,
// score and rank the candidates, resolve ambiguity, and stream the chosen
// package to local storage.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/m-mizutani/vsget/pkg/domain/interfaces"
	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

const transferChunkSize = 32 * 1024

var numberPrinter = message.NewPrinter(language.English)

type retriever struct {
	client   interfaces.MarketplaceClient
	scorer   *Scorer
	selector *Selector
	provider interfaces.ChoiceProvider
	progress model.ProgressFunc
	pageSize int
}

// RetrieverOption configures a retriever.
type RetrieverOption func(*retriever)

// WithChoiceProvider attaches the interactive decision channel. Without one
// every ambiguity resolves to the best match.
func WithChoiceProvider(p interfaces.ChoiceProvider) RetrieverOption {
	return func(r *retriever) {
		r.provider = p
	}
}

// WithScorer replaces the relevance scorer.
func WithScorer(s *Scorer) RetrieverOption {
	return func(r *retriever) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithProgress attaches a progress callback invoked on phase changes and on
// every transferred chunk.
func WithProgress(fn model.ProgressFunc) RetrieverOption {
	return func(r *retriever) {
		r.progress = fn
	}
}

// WithSearchPageSize sets how many candidates one gallery page returns.
func WithSearchPageSize(n int) RetrieverOption {
	return func(r *retriever) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

// NewRetriever creates the retrieval pipeline on top of a gallery client.
func NewRetriever(client interfaces.MarketplaceClient, opts ...RetrieverOption) interfaces.ExtensionRetriever {
	r := &retriever{
		client:   client,
		scorer:   NewScorer(),
		pageSize: model.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.selector = NewSelector(r.provider)
	return r
}

// Search queries the gallery and returns the candidates scored and sorted
// best first.
func (r *retriever) Search(ctx context.Context, term string) ([]*model.ScoredCandidate, error) {
	candidates, err := r.searchCandidates(ctx, term)
	if err != nil {
		return nil, err
	}
	return r.scoreCandidates(ctx, candidates, term), nil
}

// Enumerate walks result pages until limit candidates are collected or a
// short page signals the gallery is exhausted.
func (r *retriever) Enumerate(ctx context.Context, term string, limit int) ([]*model.Candidate, error) {
	if limit <= 0 {
		return nil, goerr.New("listing limit must be positive",
			goerr.T(types.TagValidation), goerr.V("limit", limit))
	}
	term = strings.TrimSpace(term)

	var all []*model.Candidate
	for page := 1; len(all) < limit; page++ {
		query := model.NewSearchQuery(term,
			model.WithPageSize(r.pageSize),
			model.WithPageNumber(page),
			model.WithFlags(model.FlagsCatalog),
		)
		batch, err := r.client.Search(ctx, query)
		if err != nil {
			return nil, goerr.Wrap(err, "gallery listing failed", goerr.V("page", page))
		}
		all = append(all, batch...)
		if len(batch) < r.pageSize {
			break // short page, nothing further to fetch
		}
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Download runs the whole pipeline for one request and returns the stored
// package file. Any partially written file is removed before an error
// surfaces.
func (r *retriever) Download(ctx context.Context, req *model.DownloadRequest) (*model.TransferResult, error) {
	logger := logging.From(ctx)
	started := time.Now()

	if req.Version != "" {
		if _, err := semver.NewVersion(strings.TrimPrefix(req.Version, "v")); err != nil {
			return nil, r.finish(goerr.Wrap(err, "invalid version override",
				goerr.T(types.TagValidation), goerr.V("version", req.Version)))
		}
	}
	destDir := req.DestDir
	if destDir == "" {
		destDir = "."
	}

	r.emit(model.PhaseSearching, 0, 0)
	candidates, err := r.searchCandidates(ctx, req.Term)
	if err != nil {
		return nil, r.finish(err)
	}

	r.emit(model.PhaseScoring, 0, 0)
	scored := r.scoreCandidates(ctx, candidates, req.Term)

	interactive := r.provider != nil && !req.AssumeYes

	r.emit(model.PhaseSelecting, 0, 0)
	choice, err := r.selector.Select(ctx, scored, interactive)
	if err != nil {
		return nil, r.finish(err)
	}

	if interactive {
		r.emit(model.PhaseConfirming, 0, 0)
		ok, err := r.provider.Confirm(ctx, choice)
		if err != nil {
			return nil, r.finish(err)
		}
		if !ok {
			return nil, r.finish(types.ErrCancelled)
		}
	}

	target, err := model.NewDownloadTarget(choice.Candidate, req.Version, destDir)
	if err != nil {
		return nil, r.finish(goerr.Wrap(err, "no downloadable version", goerr.T(types.TagNotFound)))
	}
	r.logStatistics(logger, choice.Candidate)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, r.finish(classifyFileErr(err, "failed to create output directory"))
	}

	r.emit(model.PhaseTransferring, 0, 0)
	result, err := r.transfer(ctx, target, started)
	if err != nil {
		return nil, r.finish(err)
	}

	r.emit(model.PhaseDone, result.Bytes, result.Bytes)
	logger.Info("Download completed: " + result.Path)
	return result, nil
}

func (r *retriever) searchCandidates(ctx context.Context, term string) ([]*model.Candidate, error) {
	logger := logging.From(ctx)

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, goerr.New("search term must not be empty", goerr.T(types.TagValidation))
	}

	logger.Info("Searching for extension: " + term)
	query := model.NewSearchQuery(term, model.WithPageSize(r.pageSize))
	candidates, err := r.client.Search(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "gallery search failed", goerr.V("term", term))
	}
	if len(candidates) == 0 {
		return nil, goerr.New("no extensions found matching the term",
			goerr.T(types.TagNotFound), goerr.V("term", term))
	}
	return candidates, nil
}

func (r *retriever) scoreCandidates(ctx context.Context, candidates []*model.Candidate, term string) []*model.ScoredCandidate {
	scored := r.scorer.ScoreAll(candidates, term)
	logging.From(ctx).Debug(fmt.Sprintf("Scored %d candidates, best match %s at %.1f",
		len(scored), scored[0].Candidate.UniqueID(), scored[0].Score))
	return scored
}

// transfer streams the package to its destination in fixed-size chunks. On
// any failure the partial file is removed so no corrupt artifact remains.
func (r *retriever) transfer(ctx context.Context, target *model.DownloadTarget, started time.Time) (*model.TransferResult, error) {
	logger := logging.From(ctx)
	path := target.Path()

	logger.Info(fmt.Sprintf("Downloading %s.%s version %s",
		target.Publisher, target.ExtensionID, target.Version))
	logger.Info("Saving to: " + path)

	payload, err := r.client.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	defer payload.Body.Close()

	if payload.TotalBytes < 0 {
		logger.Warn("Could not determine file size, downloading without progress tracking")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, classifyFileErr(err, "failed to create output file")
	}

	written, err := r.copyChunks(ctx, f, payload)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, classifyFileErr(err, "failed to finalize output file")
	}

	r.emit(model.PhaseVerifying, written, payload.TotalBytes)
	if written == 0 {
		os.Remove(path)
		return nil, goerr.New("downloaded file is empty",
			goerr.T(types.TagEmptyFile), goerr.V("path", path))
	}

	return &model.TransferResult{
		Path:     path,
		Bytes:    written,
		Duration: time.Since(started),
	}, nil
}

func (r *retriever) copyChunks(ctx context.Context, dst io.Writer, payload *model.Payload) (int64, error) {
	buf := make([]byte, transferChunkSize)
	var written int64
	for {
		n, rerr := payload.Body.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, classifyFileErr(werr, "failed to write package data")
			}
			r.emit(model.PhaseTransferring, written, payload.TotalBytes)
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, classifyStreamErr(ctx, rerr)
		}
	}
}

func (r *retriever) logStatistics(logger logging.Logger, c *model.Candidate) {
	if n := c.Statistics.Installs(); n > 0 {
		logger.Info(numberPrinter.Sprintf("Extension install count: %d", n))
	}
	if avg := c.Statistics.AverageRating(); avg > 0 {
		logger.Info(fmt.Sprintf("Extension rating: %.2f", avg))
	}
	if n := c.Statistics.RatingCount(); n > 0 {
		logger.Info(numberPrinter.Sprintf("Number of ratings: %d", n))
	}
}

func (r *retriever) emit(phase model.Phase, transferred, total int64) {
	if r.progress != nil {
		r.progress(model.TransferProgress{
			Phase:      phase,
			Bytes:      transferred,
			TotalBytes: total,
		})
	}
}

// finish reports the terminal phase for a failed or cancelled run and passes
// the error through.
func (r *retriever) finish(err error) error {
	if types.IsCancelled(err) {
		r.emit(model.PhaseCancelled, 0, 0)
	} else {
		r.emit(model.PhaseFailed, 0, 0)
	}
	return err
}

func classifyFileErr(err error, msg string) error {
	if errors.Is(err, os.ErrPermission) {
		return goerr.Wrap(err, msg, goerr.T(types.TagPermission))
	}
	return goerr.Wrap(err, msg)
}

func classifyStreamErr(ctx context.Context, err error) error {
	if types.IsTimeout(err) {
		return goerr.Wrap(err, "package stream timed out", goerr.T(types.TagTimeout))
	}
	if ctx.Err() != nil {
		return goerr.Wrap(err, "package stream aborted")
	}
	return goerr.Wrap(err, "package stream failed", goerr.T(types.TagNetwork))
}
