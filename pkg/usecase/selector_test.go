package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/usecase"
)

type scriptedProvider struct {
	chooseFn     func(ctx context.Context, candidates []*model.ScoredCandidate) (int, error)
	confirmFn    func(ctx context.Context, choice *model.ScoredCandidate) (bool, error)
	chooseCalls  int
	confirmCalls int
}

func (p *scriptedProvider) Choose(ctx context.Context, candidates []*model.ScoredCandidate) (int, error) {
	p.chooseCalls++
	if p.chooseFn != nil {
		return p.chooseFn(ctx, candidates)
	}
	return 0, nil
}

func (p *scriptedProvider) Confirm(ctx context.Context, choice *model.ScoredCandidate) (bool, error) {
	p.confirmCalls++
	if p.confirmFn != nil {
		return p.confirmFn(ctx, choice)
	}
	return true, nil
}

// rankedCandidates builds n scored candidates with strictly descending
// scores.
func rankedCandidates(n int) []*model.ScoredCandidate {
	scored := make([]*model.ScoredCandidate, 0, n)
	for i := 0; i < n; i++ {
		scored = append(scored, &model.ScoredCandidate{
			Candidate: &model.Candidate{
				Publisher: fmt.Sprintf("pub%d", i),
				ID:        fmt.Sprintf("ext%d", i),
				Versions:  []model.VersionInfo{{Version: "1.0.0"}},
			},
			Score: float64(100 - i*10),
		})
	}
	return scored
}

func TestSelector_EmptyInput(t *testing.T) {
	s := usecase.NewSelector(&scriptedProvider{})

	_, err := s.Select(context.Background(), nil, true)
	gt.Error(t, err)
	gt.Value(t, types.HasTag(err, types.TagNotFound)).Equal(true)
}

func TestSelector_SingleCandidateSkipsPrompt(t *testing.T) {
	provider := &scriptedProvider{}
	s := usecase.NewSelector(provider)
	scored := rankedCandidates(1)

	choice, err := s.Select(context.Background(), scored, true)
	gt.NoError(t, err)
	gt.Value(t, choice).Equal(scored[0])
	gt.Value(t, provider.chooseCalls).Equal(0)
}

func TestSelector_NonInteractivePicksBest(t *testing.T) {
	provider := &scriptedProvider{}
	s := usecase.NewSelector(provider)
	scored := rankedCandidates(3)

	choice, err := s.Select(context.Background(), scored, false)
	gt.NoError(t, err)
	gt.Value(t, choice).Equal(scored[0])
	gt.Value(t, provider.chooseCalls).Equal(0)
}

func TestSelector_InteractiveChoice(t *testing.T) {
	provider := &scriptedProvider{
		chooseFn: func(_ context.Context, candidates []*model.ScoredCandidate) (int, error) {
			return 2, nil
		},
	}
	s := usecase.NewSelector(provider)
	scored := rankedCandidates(4)

	choice, err := s.Select(context.Background(), scored, true)
	gt.NoError(t, err)
	gt.Value(t, choice).Equal(scored[2])
	gt.Value(t, provider.chooseCalls).Equal(1)
}

func TestSelector_OffersOnlyTopFive(t *testing.T) {
	var offered int
	provider := &scriptedProvider{
		chooseFn: func(_ context.Context, candidates []*model.ScoredCandidate) (int, error) {
			offered = len(candidates)
			return len(candidates) - 1, nil
		},
	}
	s := usecase.NewSelector(provider)
	scored := rankedCandidates(9)

	choice, err := s.Select(context.Background(), scored, true)
	gt.NoError(t, err)
	gt.Value(t, offered).Equal(5)
	gt.Value(t, choice).Equal(scored[4])
}

func TestSelector_CancelledPassesThrough(t *testing.T) {
	provider := &scriptedProvider{
		chooseFn: func(_ context.Context, _ []*model.ScoredCandidate) (int, error) {
			return 0, types.ErrCancelled
		},
	}
	s := usecase.NewSelector(provider)

	_, err := s.Select(context.Background(), rankedCandidates(3), true)
	gt.Error(t, err)
	gt.Value(t, types.IsCancelled(err)).Equal(true)
}

func TestSelector_OutOfRangeChoice(t *testing.T) {
	provider := &scriptedProvider{
		chooseFn: func(_ context.Context, _ []*model.ScoredCandidate) (int, error) {
			return 7, nil
		},
	}
	s := usecase.NewSelector(provider)

	_, err := s.Select(context.Background(), rankedCandidates(3), true)
	gt.Error(t, err)
	gt.Value(t, types.IsCancelled(err)).Equal(false)
}

func TestSelector_NilProviderFallsBackToBest(t *testing.T) {
	s := usecase.NewSelector(nil)
	scored := rankedCandidates(3)

	choice, err := s.Select(context.Background(), scored, true)
	gt.NoError(t, err)
	gt.Value(t, choice).Equal(scored[0])
}
