package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/vsget/pkg/domain/interfaces"
	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

// TopCandidates caps how many scored candidates are offered for selection.
const TopCandidates = 5

// Selector resolves which of the scored candidates to retrieve. Interactive
// decisions go through the choice provider; without one the best match wins.
type Selector struct {
	provider interfaces.ChoiceProvider
}

// NewSelector creates a selector. provider may be nil for runs that can
// never prompt.
func NewSelector(provider interfaces.ChoiceProvider) *Selector {
	return &Selector{provider: provider}
}

// Select picks one candidate from the list, which must be sorted best first.
// Only the top candidates are eligible. A single candidate is returned
// without prompting; with several and no interactive channel the best match
// is auto-selected and noted in the log.
func (s *Selector) Select(ctx context.Context, scored []*model.ScoredCandidate, interactive bool) (*model.ScoredCandidate, error) {
	logger := logging.From(ctx)

	if len(scored) == 0 {
		return nil, goerr.New("no candidates to select from", goerr.T(types.TagNotFound))
	}

	top := scored
	if len(top) > TopCandidates {
		top = top[:TopCandidates]
	}

	if len(top) == 1 {
		logger.Debug(fmt.Sprintf("Single candidate %s, selecting it", top[0].Candidate.UniqueID()))
		return top[0], nil
	}

	if !interactive || s.provider == nil {
		choice := top[0]
		logger.Info(fmt.Sprintf("Auto-selected %s (best of %d candidates, score %.1f)",
			choice.Candidate.UniqueID(), len(top), choice.Score))
		return choice, nil
	}

	idx, err := s.provider.Choose(ctx, top)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(top) {
		return nil, goerr.New("candidate choice out of range",
			goerr.V("index", idx), goerr.V("candidates", len(top)))
	}
	return top[idx], nil
}
