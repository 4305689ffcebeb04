package interfaces

import (
	"context"

	"github.com/m-mizutani/vsget/pkg/domain/model"
)

// ChoiceProvider resolves the user-facing decisions of a retrieval. The
// terminal implementation asks interactively; tests and non-interactive runs
// substitute scripted answers.
type ChoiceProvider interface {
	// Choose picks one candidate from the ranked list and returns its
	// index. Returns types.ErrCancelled when the user backs out.
	Choose(ctx context.Context, candidates []*model.ScoredCandidate) (int, error)

	// Confirm asks whether to proceed with the chosen candidate.
	Confirm(ctx context.Context, choice *model.ScoredCandidate) (bool, error)
}
