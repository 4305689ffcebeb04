package model

// QueryFlag selects optional response fields in a gallery extension query.
// Values follow the marketplace API bitmask.
type QueryFlag int

const (
	FlagIncludeVersions            QueryFlag = 0x1
	FlagIncludeFiles               QueryFlag = 0x2
	FlagIncludeCategoryAndTags     QueryFlag = 0x4
	FlagIncludeSharedAccounts      QueryFlag = 0x8
	FlagIncludeVersionProperties   QueryFlag = 0x10
	FlagExcludeNonValidated        QueryFlag = 0x20
	FlagIncludeInstallationTargets QueryFlag = 0x40
	FlagIncludeAssetURI            QueryFlag = 0x80
	FlagIncludeStatistics          QueryFlag = 0x100
	FlagIncludeLatestVersionOnly   QueryFlag = 0x200
	FlagIncludeUnpublished         QueryFlag = 0x1000
	FlagIncludeNameConflictInfo    QueryFlag = 0x8000
)

// Flag combinations for the two query shapes the tool issues.
const (
	// FlagsSearch is the minimal set for resolution: latest version plus statistics.
	FlagsSearch = FlagIncludeLatestVersionOnly | FlagIncludeStatistics

	// FlagsCatalog is the detailed set used for catalog enumeration: every
	// version with files, categories, properties, targets, asset URIs,
	// statistics and name-conflict info.
	FlagsCatalog = FlagIncludeVersions | FlagIncludeFiles | FlagIncludeCategoryAndTags |
		FlagIncludeSharedAccounts | FlagIncludeVersionProperties |
		FlagIncludeInstallationTargets | FlagIncludeAssetURI |
		FlagIncludeStatistics | FlagIncludeNameConflictInfo
)

// Paging defaults and bounds for gallery queries.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SearchQuery describes one gallery extension query. Immutable once built;
// construct via NewSearchQuery.
type SearchQuery struct {
	term       string
	pageNumber int
	pageSize   int
	flags      QueryFlag
}

// QueryOption customizes a SearchQuery at construction time.
type QueryOption func(*SearchQuery)

// WithPageSize sets the number of candidates requested per page. Values
// outside [1, MaxPageSize] are clamped.
func WithPageSize(n int) QueryOption {
	return func(q *SearchQuery) {
		switch {
		case n < 1:
			q.pageSize = 1
		case n > MaxPageSize:
			q.pageSize = MaxPageSize
		default:
			q.pageSize = n
		}
	}
}

// WithPageNumber sets the 1-based result page to request.
func WithPageNumber(n int) QueryOption {
	return func(q *SearchQuery) {
		if n < 1 {
			n = 1
		}
		q.pageNumber = n
	}
}

// WithFlags replaces the response field selection bitmask.
func WithFlags(f QueryFlag) QueryOption {
	return func(q *SearchQuery) {
		q.flags = f
	}
}

// NewSearchQuery builds a query for the given free-text term. An empty term
// matches the whole catalog (used by enumeration).
func NewSearchQuery(term string, opts ...QueryOption) SearchQuery {
	q := SearchQuery{
		term:       term,
		pageNumber: 1,
		pageSize:   DefaultPageSize,
		flags:      FlagsSearch,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Term returns the free-text search term.
func (q SearchQuery) Term() string { return q.term }

// PageNumber returns the 1-based page to request.
func (q SearchQuery) PageNumber() int { return q.pageNumber }

// PageSize returns the number of candidates requested per page.
func (q SearchQuery) PageSize() int { return q.pageSize }

// Flags returns the response field selection bitmask.
func (q SearchQuery) Flags() QueryFlag { return q.flags }
