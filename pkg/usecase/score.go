package usecase

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/vsget/pkg/domain/model"
)

// Weights sets the maximum contribution of each relevance component. The
// stock split is heuristic; callers can tune it without touching the scoring
// logic.
type Weights struct {
	Name       float64
	Popularity float64
	Rating     float64
	Recency    float64
}

// DefaultWeights is the stock 40/30/20/10 split.
var DefaultWeights = Weights{
	Name:       40,
	Popularity: 30,
	Rating:     20,
	Recency:    10,
}

// maxInstalls bounds the install count before the log term so absurd values
// cannot overflow the popularity component.
const maxInstalls = 1e12

// timestampLayouts are the formats the gallery has been seen returning for
// lastUpdated.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Scorer computes candidate relevance in [0,100] against a search term. Pure
// apart from the clock, which is injectable for deterministic tests.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithWeights replaces the component weights.
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithScorerClock replaces the clock used for the recency component.
func WithScorerClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) {
		s.now = now
	}
}

// NewScorer creates a scorer with the default weights.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		weights: DefaultWeights,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the candidate's relevance against the term, clamped to
// [0,100].
func (s *Scorer) Score(c *model.Candidate, term string) float64 {
	score := s.nameScore(c, term) +
		s.popularityScore(c) +
		s.ratingScore(c) +
		s.recencyScore(c)
	return math.Min(100, math.Max(0, score))
}

// ScoreAll scores every candidate and returns them sorted best first. The
// sort is stable, so equal scores keep their gallery order.
func (s *Scorer) ScoreAll(candidates []*model.Candidate, term string) []*model.ScoredCandidate {
	scored := make([]*model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, &model.ScoredCandidate{
			Candidate: c,
			Score:     s.Score(c, term),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// nameScore matches the term against the extension id and display name: an
// exact match earns the full weight, a whole-word hit 75%, a bare substring
// 50%.
func (s *Scorer) nameScore(c *model.Candidate, term string) float64 {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return 0
	}
	id := strings.ToLower(c.ID)
	name := strings.ToLower(c.DisplayName)

	switch {
	case id == t || name == t:
		return s.weights.Name
	case containsWord(id, t) || containsWord(name, t):
		return s.weights.Name * 0.75
	case strings.Contains(id, t) || strings.Contains(name, t):
		return s.weights.Name * 0.5
	}
	return 0
}

// popularityScore grows with log10 of the install count and saturates at the
// full weight once installs reach 10^10.
func (s *Scorer) popularityScore(c *model.Candidate) float64 {
	installs := float64(c.Statistics.Installs())
	if installs <= 0 {
		return 0
	}
	if installs > maxInstalls {
		installs = maxInstalls
	}
	return math.Min(s.weights.Popularity, math.Log10(installs)*s.weights.Popularity/10)
}

// ratingScore scales the 0-5 average by a confidence factor that reaches 1
// once roughly a hundred ratings exist.
func (s *Scorer) ratingScore(c *model.Candidate) float64 {
	avg := c.Statistics.AverageRating()
	count := float64(c.Statistics.RatingCount())
	if avg <= 0 || count <= 0 {
		return 0
	}
	if avg > 5 {
		avg = 5
	}
	confidence := math.Min(1, math.Log10(count+1)/2)
	return (avg / 5) * confidence * s.weights.Rating
}

// recencyScore decays linearly, losing a tenth of the weight per 30 days
// since the last update. Unparseable or future timestamps contribute nothing.
func (s *Scorer) recencyScore(c *model.Candidate) float64 {
	ts, ok := parseTimestamp(c.LastUpdated)
	if !ok {
		return 0
	}
	days := s.now().Sub(ts).Hours() / 24
	if days < 0 {
		return 0
	}
	return math.Max(0, s.weights.Recency-days/30*(s.weights.Recency/10))
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func containsWord(s, word string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if f == word {
			return true
		}
	}
	return false
}
