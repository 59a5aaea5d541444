package match

import (
	"math"
	"testing"
)

func year(y int) *int { return &y }

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"The Matrix (1999)", "matrix"},
		{"Heat", "heat"},
		{"  Léon: The Professional  ", "léon the professional"},
		{"WALL·E", "walle"},
		{"Se7en (1995)", "se7en"},
		{"The  Thing", "thing"},
	}
	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("heat", "heat"); got != 1 {
		t.Fatalf("identical titles: expected 1, got %v", got)
	}
	if got := Similarity("", ""); got != 0 {
		t.Fatalf("empty titles: expected 0, got %v", got)
	}
	// 4 of 5 characters of "heat" find unused positions in "heart".
	if got := Similarity("heat", "heart"); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("heat/heart: expected 0.8, got %v", got)
	}
	// Overlap counts characters, not bytes, so an accent is one mismatch.
	if got := Similarity("café", "cafe"); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("café/cafe: expected 0.75, got %v", got)
	}
	if got := Similarity("abc", "xyz"); got != 0 {
		t.Fatalf("disjoint: expected 0, got %v", got)
	}
}

func TestResolvePriorityOrder(t *testing.T) {
	snapshot := []Candidate{
		{MovieID: 1, FolderPath: "/library/Heat (1995)", ProviderID: "tt0113277", Title: "Heat", Year: year(1995)},
		{MovieID: 2, FolderPath: "/library/Heat (1972)", Title: "Heat", Year: year(1972)},
	}

	result := Resolve(Request{Path: "/library/Heat (1995)", ProviderID: "tt0113277", Title: "Heat", Year: year(1995)}, snapshot)
	if result == nil || result.Strategy != StrategyPath || result.Confidence != 1.0 || result.Ambiguous {
		t.Fatalf("expected unambiguous path match, got %+v", result)
	}

	// Media servers report the primary file, not the folder; its parent
	// directory still wins the path strategy.
	result = Resolve(Request{Path: "/library/Heat (1995)/Heat.1995.2160p.mkv", Title: "Heat", Year: year(1995)}, snapshot)
	if result == nil || result.Strategy != StrategyPath || result.Confidence != 1.0 || result.MovieID != 1 {
		t.Fatalf("expected path match for a file inside the folder, got %+v", result)
	}

	result = Resolve(Request{Path: "/other/Heat", ProviderID: "tt0113277", Title: "Heat", Year: year(1995)}, snapshot)
	if result == nil || result.Strategy != StrategyProviderID || result.MovieID != 1 {
		t.Fatalf("expected provider id match, got %+v", result)
	}

	result = Resolve(Request{Title: "The Heat (1995)", Year: year(1995)}, snapshot)
	if result == nil || result.Strategy != StrategyTitleYear || result.Confidence != 0.95 || result.MovieID != 1 {
		t.Fatalf("expected title+year match, got %+v", result)
	}
}

func TestResolveTitleOnlyYearMismatch(t *testing.T) {
	snapshot := []Candidate{
		{MovieID: 7, Title: "Solaris", Year: year(1972)},
	}
	result := Resolve(Request{Title: "Solaris", Year: year(2002)}, snapshot)
	if result == nil || result.Strategy != StrategyTitleOnly {
		t.Fatalf("expected title-only match, got %+v", result)
	}
	if result.Confidence != 0.75 || !result.Ambiguous || result.AmbiguityReason != ReasonYearMismatch {
		t.Fatalf("expected ambiguous 0.75 year_mismatch, got %+v", result)
	}

	result = Resolve(Request{Title: "Solaris"}, snapshot)
	if result == nil || result.Ambiguous {
		t.Fatalf("expected unambiguous match when a year is missing, got %+v", result)
	}
}

func TestResolveFuzzy(t *testing.T) {
	snapshot := []Candidate{
		{MovieID: 3, Title: "The Shawshank Redemption", Year: year(1994)},
	}
	result := Resolve(Request{Title: "Shawshank Redemptio", Year: year(1994)}, snapshot)
	if result == nil || result.Strategy != StrategyTitleFuzzy {
		t.Fatalf("expected fuzzy match, got %+v", result)
	}
	if !result.Ambiguous || result.AmbiguityReason != ReasonTitleFuzzy {
		t.Fatalf("expected title_fuzzy ambiguity, got %+v", result)
	}
	sim := Similarity(NormalizeTitle("Shawshank Redemptio"), NormalizeTitle("The Shawshank Redemption"))
	if math.Abs(result.Confidence-sim*0.9) > 1e-9 {
		t.Fatalf("expected confidence %v, got %v", sim*0.9, result.Confidence)
	}

	result = Resolve(Request{Title: "Shawshank Redemptio", Year: year(1995)}, snapshot)
	if result == nil || result.AmbiguityReason != ReasonYearAndTitleFuzzy {
		t.Fatalf("expected year_and_title_fuzzy, got %+v", result)
	}
}

func TestResolveFuzzyThresholdBoundary(t *testing.T) {
	// "abcdefghijklmnopqrst" vs a 20-char candidate sharing exactly 17 of
	// its characters scores 0.85 and is kept; 16 shared scores 0.80 and is
	// discarded.
	keep := []Candidate{{MovieID: 1, Title: "abcdefghijklmnopqXYZ"}}
	result := Resolve(Request{Title: "abcdefghijklmnopqrst"}, keep)
	if result == nil {
		t.Fatal("expected 0.85 similarity to clear the threshold")
	}
	if math.Abs(result.Confidence-0.85*0.9) > 1e-9 {
		t.Fatalf("expected confidence 0.765, got %v", result.Confidence)
	}

	drop := []Candidate{{MovieID: 2, Title: "abcdefghijklmnopWXYZ"}}
	if result := Resolve(Request{Title: "abcdefghijklmnopqrst"}, drop); result != nil {
		t.Fatalf("expected sub-threshold candidate to be discarded, got %+v", result)
	}
}

func TestResolveNoMatch(t *testing.T) {
	snapshot := []Candidate{{MovieID: 1, Title: "Heat", Year: year(1995)}}
	if result := Resolve(Request{Title: "Completely Different"}, snapshot); result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestResolveFuzzyPicksBestSimilarity(t *testing.T) {
	snapshot := []Candidate{
		{MovieID: 1, Title: "abcdefghijklmnopq000"},
		{MovieID: 2, Title: "abcdefghijklmnopqrs0"},
	}
	result := Resolve(Request{Title: "abcdefghijklmnopqrst"}, snapshot)
	if result == nil || result.MovieID != 2 {
		t.Fatalf("expected the higher-similarity candidate, got %+v", result)
	}
}
