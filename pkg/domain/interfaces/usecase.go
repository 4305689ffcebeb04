package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . ExtensionRetriever

import (
	"context"

	"github.com/m-mizutani/vsget/pkg/domain/model"
)

// ExtensionRetriever defines the operations the command surface drives.
type ExtensionRetriever interface {
	// Search queries the gallery and returns the candidates scored and
	// sorted by relevance, best first.
	Search(ctx context.Context, term string) ([]*model.ScoredCandidate, error)

	// Enumerate walks result pages until limit candidates are collected
	// or the gallery runs out.
	Enumerate(ctx context.Context, term string, limit int) ([]*model.Candidate, error)

	// Download runs the whole pipeline: search, score, select, confirm
	// and store the package file.
	Download(ctx context.Context, req *model.DownloadRequest) (*model.TransferResult, error)
}
