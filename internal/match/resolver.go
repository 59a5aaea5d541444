package match

import (
	"path/filepath"
	"sort"
)

// Strategy names recorded in the audit log. Review tooling keys off these
// values together with the confidence bands, so they are stable.
const (
	StrategyPath       = "path"
	StrategyProviderID = "provider_id"
	StrategyTitleYear  = "title_year"
	StrategyTitleOnly  = "title_only"
	StrategyTitleFuzzy = "title_fuzzy"
)

// Ambiguity reasons recorded alongside ambiguous matches.
const (
	ReasonYearMismatch      = "year_mismatch"
	ReasonTitleFuzzy        = "title_fuzzy"
	ReasonYearAndTitleFuzzy = "year_and_title_fuzzy"
)

const (
	confidenceExact     = 1.0
	confidenceTitleYear = 0.95
	confidenceTitleOnly = 0.75
	fuzzyThreshold      = 0.85
	fuzzyDiscount       = 0.9
)

// Request is one external catalog item to resolve.
type Request struct {
	Path       string
	ProviderID string
	Title      string
	Year       *int
}

// Candidate is one local movie row in the snapshot.
type Candidate struct {
	MovieID    int64
	FolderPath string
	ProviderID string
	Title      string
	Year       *int
}

// Result describes a successful resolution.
type Result struct {
	MovieID         int64
	Strategy        string
	Confidence      float64
	Ambiguous       bool
	AmbiguityReason string
}

type strategyFunc func(Request, []Candidate) *Result

// strategies in priority order; the first hit wins.
var strategies = []strategyFunc{
	matchPath,
	matchProviderID,
	matchTitleYear,
	matchTitleOnly,
	matchFuzzy,
}

// Resolve runs the strategies in order against the snapshot and returns the
// first match, or nil when every strategy misses.
func Resolve(req Request, snapshot []Candidate) *Result {
	for _, strategy := range strategies {
		if result := strategy(req, snapshot); result != nil {
			return result
		}
	}
	return nil
}

// matchPath accepts the external item's path either as the movie folder
// itself or as a file inside it; media servers report the primary file.
func matchPath(req Request, snapshot []Candidate) *Result {
	if req.Path == "" {
		return nil
	}
	parent := filepath.Dir(req.Path)
	for _, candidate := range snapshot {
		if candidate.FolderPath == req.Path || candidate.FolderPath == parent {
			return &Result{
				MovieID:    candidate.MovieID,
				Strategy:   StrategyPath,
				Confidence: confidenceExact,
			}
		}
	}
	return nil
}

func matchProviderID(req Request, snapshot []Candidate) *Result {
	if req.ProviderID == "" {
		return nil
	}
	for _, candidate := range snapshot {
		if candidate.ProviderID != "" && candidate.ProviderID == req.ProviderID {
			return &Result{
				MovieID:    candidate.MovieID,
				Strategy:   StrategyProviderID,
				Confidence: confidenceExact,
			}
		}
	}
	return nil
}

func matchTitleYear(req Request, snapshot []Candidate) *Result {
	if req.Year == nil {
		return nil
	}
	title := NormalizeTitle(req.Title)
	if title == "" {
		return nil
	}
	for _, candidate := range snapshot {
		if candidate.Year == nil || *candidate.Year != *req.Year {
			continue
		}
		if NormalizeTitle(candidate.Title) == title {
			return &Result{
				MovieID:    candidate.MovieID,
				Strategy:   StrategyTitleYear,
				Confidence: confidenceTitleYear,
			}
		}
	}
	return nil
}

func matchTitleOnly(req Request, snapshot []Candidate) *Result {
	title := NormalizeTitle(req.Title)
	if title == "" {
		return nil
	}
	for _, candidate := range snapshot {
		if NormalizeTitle(candidate.Title) != title {
			continue
		}
		result := &Result{
			MovieID:    candidate.MovieID,
			Strategy:   StrategyTitleOnly,
			Confidence: confidenceTitleOnly,
		}
		if yearsDisagree(req.Year, candidate.Year) {
			result.Ambiguous = true
			result.AmbiguityReason = ReasonYearMismatch
		}
		return result
	}
	return nil
}

func matchFuzzy(req Request, snapshot []Candidate) *Result {
	title := NormalizeTitle(req.Title)
	if title == "" {
		return nil
	}

	type scored struct {
		candidate  Candidate
		similarity float64
	}
	var contenders []scored
	for _, candidate := range snapshot {
		similarity := Similarity(title, NormalizeTitle(candidate.Title))
		if similarity >= fuzzyThreshold {
			contenders = append(contenders, scored{candidate, similarity})
		}
	}
	if len(contenders) == 0 {
		return nil
	}
	sort.SliceStable(contenders, func(i, j int) bool {
		return contenders[i].similarity > contenders[j].similarity
	})

	best := contenders[0]
	reason := ReasonTitleFuzzy
	if yearsDisagree(req.Year, best.candidate.Year) {
		reason = ReasonYearAndTitleFuzzy
	}
	return &Result{
		MovieID:         best.candidate.MovieID,
		Strategy:        StrategyTitleFuzzy,
		Confidence:      best.similarity * fuzzyDiscount,
		Ambiguous:       true,
		AmbiguityReason: reason,
	}
}

func yearsDisagree(a, b *int) bool {
	return a != nil && b != nil && *a != *b
}
