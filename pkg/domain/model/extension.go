package model

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Statistic names reported by the gallery.
const (
	StatInstall       = "install"
	StatAverageRating = "averagerating"
	StatRatingCount   = "ratingcount"
)

// Statistics holds gallery statistics for one extension, keyed by statistic
// name. Missing entries read as zero.
type Statistics map[string]float64

// Installs returns the install count.
func (s Statistics) Installs() int64 {
	return int64(s[StatInstall])
}

// AverageRating returns the mean rating on a 0-5 scale.
func (s Statistics) AverageRating() float64 {
	return s[StatAverageRating]
}

// RatingCount returns the number of submitted ratings.
func (s Statistics) RatingCount() int64 {
	return int64(s[StatRatingCount])
}

// VersionInfo is one published version of an extension.
type VersionInfo struct {
	Version string
}

// SemVer parses the version string as semantic version, tolerating a leading
// "v" prefix.
func (v VersionInfo) SemVer() (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(v.Version, "v"))
}

// Candidate is one extension record returned by a marketplace search.
// Read-only after parsing; it lives only for a single resolution call.
type Candidate struct {
	Publisher   string        // publisher account name (download URL segment)
	ID          string        // extension identifier (download URL segment)
	DisplayName string        // human-readable name
	Description string        // short description from the gallery
	Versions    []VersionInfo // newest first; the first entry is the latest
	Statistics  Statistics
	LastUpdated string // raw gallery timestamp, parsed leniently by the scorer
}

// UniqueID returns the canonical "publisher.id" identity.
func (c *Candidate) UniqueID() string {
	return c.Publisher + "." + c.ID
}

// Latest returns the newest published version, if any.
func (c *Candidate) Latest() (VersionInfo, bool) {
	if len(c.Versions) == 0 {
		return VersionInfo{}, false
	}
	return c.Versions[0], true
}
