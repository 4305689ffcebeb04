package marketplace

import (
	"github.com/m-mizutani/vsget/pkg/domain/model"
)

// Criterion filter types understood by the gallery query endpoint.
const (
	criterionTarget     = 8
	criterionSearchText = 10
)

// galleryTarget restricts queries to VS Code extensions.
const galleryTarget = "Microsoft.VisualStudio.Code"

type queryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

type queryFilter struct {
	Criteria   []queryCriterion `json:"criteria"`
	PageNumber int              `json:"pageNumber"`
	PageSize   int              `json:"pageSize"`
	SortBy     int              `json:"sortBy"`
	SortOrder  int              `json:"sortOrder"`
}

type queryRequest struct {
	Filters    []queryFilter `json:"filters"`
	AssetTypes []string      `json:"assetTypes"`
	Flags      int           `json:"flags"`
}

// newQueryRequest builds the gallery request body for one search query. The
// free-text criterion is omitted when the term is empty, which makes the
// gallery return its default listing.
func newQueryRequest(q model.SearchQuery) queryRequest {
	criteria := []queryCriterion{
		{FilterType: criterionTarget, Value: galleryTarget},
	}
	if q.Term() != "" {
		criteria = append(criteria, queryCriterion{FilterType: criterionSearchText, Value: q.Term()})
	}

	return queryRequest{
		Filters: []queryFilter{
			{
				Criteria:   criteria,
				PageNumber: q.PageNumber(),
				PageSize:   q.PageSize(),
				SortBy:     0,
				SortOrder:  0,
			},
		},
		AssetTypes: []string{},
		Flags:      int(q.Flags()),
	}
}

type statisticDTO struct {
	StatisticName string  `json:"statisticName"`
	Value         float64 `json:"value"`
}

type versionDTO struct {
	Version string `json:"version"`
}

type extensionDTO struct {
	Publisher struct {
		PublisherName string `json:"publisherName"`
	} `json:"publisher"`
	ExtensionName    string         `json:"extensionName"`
	DisplayName      string         `json:"displayName"`
	ShortDescription string         `json:"shortDescription"`
	Versions         []versionDTO   `json:"versions"`
	Statistics       []statisticDTO `json:"statistics"`
	LastUpdated      string         `json:"lastUpdated"`
}

type queryResponse struct {
	Results []struct {
		Extensions []extensionDTO `json:"extensions"`
	} `json:"results"`
}

func (x *extensionDTO) toCandidate() *model.Candidate {
	versions := make([]model.VersionInfo, 0, len(x.Versions))
	for _, v := range x.Versions {
		versions = append(versions, model.VersionInfo{Version: v.Version})
	}

	stats := make(model.Statistics, len(x.Statistics))
	for _, s := range x.Statistics {
		stats[s.StatisticName] = s.Value
	}

	return &model.Candidate{
		Publisher:   x.Publisher.PublisherName,
		ID:          x.ExtensionName,
		DisplayName: x.DisplayName,
		Description: x.ShortDescription,
		Versions:    versions,
		Statistics:  stats,
		LastUpdated: x.LastUpdated,
	}
}
