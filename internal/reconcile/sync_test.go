package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"reeldex/internal/catalog"
	"reeldex/internal/mediaserver"
)

func year(y int) *int { return &y }

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSyncMergesEnrichment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	heat, err := store.UpsertMovie(ctx, "/library/Heat (1995)", "Heat (1995)", "Heat", year(1995))
	if err != nil {
		t.Fatalf("upsert movie: %v", err)
	}
	if _, err := store.UpsertMovie(ctx, "/library/Solaris (1972)", "Solaris (1972)", "Solaris", year(1972)); err != nil {
		t.Fatalf("upsert movie: %v", err)
	}

	rating := 8.3
	items := []mediaserver.Item{
		{
			ID:              "a",
			Title:           "Heat",
			Year:            year(1995),
			ProviderID:      "tt0113277",
			Path:            "/library/Heat (1995)",
			CommunityRating: &rating,
			Genres:          []string{"Crime", "Thriller"},
			Overview:        "A heist goes wrong.",
		},
		{ID: "b", Title: "Solaris", Year: year(2002)},
		{ID: "c", Title: "Unknown Movie", Year: year(2011)},
	}

	report, err := New(store, nil).Sync(ctx, items)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Total != 3 || report.Matched != 2 || report.Ambiguous != 1 || report.Unmatched != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.JobID == "" {
		t.Fatal("expected a job id")
	}

	enriched, err := store.MovieByID(ctx, heat.ID)
	if err != nil {
		t.Fatalf("movie by id: %v", err)
	}
	if enriched.Enrichment.ProviderID != "tt0113277" {
		t.Fatalf("expected provider id merged, got %q", enriched.Enrichment.ProviderID)
	}
	if enriched.Enrichment.CommunityRating == nil || *enriched.Enrichment.CommunityRating != 8.3 {
		t.Fatalf("expected community rating merged, got %v", enriched.Enrichment.CommunityRating)
	}
	if len(enriched.Enrichment.Genres) != 2 || enriched.Enrichment.Synopsis == "" {
		t.Fatalf("expected genres and synopsis merged, got %+v", enriched.Enrichment)
	}

	// The ambiguous year-mismatch match and the unmatched item await review;
	// the clean path match does not.
	pending, err := store.PendingMatchLog(ctx)
	if err != nil {
		t.Fatalf("pending match log: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending audit rows, got %d", len(pending))
	}
	for _, entry := range pending {
		if entry.JobID != report.JobID {
			t.Fatalf("expected shared job id %q, got %q", report.JobID, entry.JobID)
		}
	}
	if pending[0].AmbiguityReason != "year_mismatch" {
		t.Fatalf("expected year_mismatch reason first, got %q", pending[0].AmbiguityReason)
	}
	if pending[1].MovieID != nil || pending[1].Strategy != "" {
		t.Fatalf("expected unmatched row with no movie, got %+v", pending[1])
	}
}

func TestSyncAppliesAmbiguousMatchOptimistically(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	movie, err := store.UpsertMovie(ctx, "/library/Solaris (1972)", "Solaris (1972)", "Solaris", year(1972))
	if err != nil {
		t.Fatalf("upsert movie: %v", err)
	}

	report, err := New(store, nil).Sync(ctx, []mediaserver.Item{
		{ID: "x", Title: "Solaris", Year: year(2002), ProviderID: "tt0307479"},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Matched != 1 || report.Ambiguous != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	enriched, err := store.MovieByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("movie by id: %v", err)
	}
	if enriched.Enrichment.ProviderID != "tt0307479" {
		t.Fatalf("expected optimistic enrichment, got %q", enriched.Enrichment.ProviderID)
	}
}

func TestSyncEmptyLibrary(t *testing.T) {
	store := newTestStore(t)
	report, err := New(store, nil).Sync(context.Background(), []mediaserver.Item{
		{ID: "a", Title: "Anything", Year: year(2000)},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Unmatched != 1 || report.Matched != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
