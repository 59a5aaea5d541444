package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"reeldex/internal/catalog"
	"reeldex/internal/logging"
	"reeldex/internal/match"
	"reeldex/internal/mediaserver"
)

// Report summarizes one sync pass.
type Report struct {
	JobID     string
	Total     int
	Matched   int
	Ambiguous int
	Unmatched int
}

// Reconciler merges external catalog metadata into the local store.
type Reconciler struct {
	store  *catalog.Store
	logger *slog.Logger
}

// New builds a reconciler over the given store.
func New(store *catalog.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logging.NewComponentLogger(logger, "reconcile")}
}

// Sync resolves every external item against a single snapshot of the local
// movies, merging enrichment into matches and recording each attempt in the
// match log under one job id.
func (r *Reconciler) Sync(ctx context.Context, items []mediaserver.Item) (*Report, error) {
	jobID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldJobID, jobID))

	movies, err := r.store.AllMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load movie snapshot: %w", err)
	}
	snapshot := make([]match.Candidate, 0, len(movies))
	for _, movie := range movies {
		snapshot = append(snapshot, match.Candidate{
			MovieID:    movie.ID,
			FolderPath: movie.FolderPath,
			ProviderID: movie.Enrichment.ProviderID,
			Title:      movie.Title,
			Year:       movie.Year,
		})
	}

	report := &Report{JobID: jobID, Total: len(items)}
	logger.Info("sync started", logging.Int("items", len(items)), logging.Int("movies", len(movies)))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := match.Resolve(match.Request{
			Path:       item.Path,
			ProviderID: item.ProviderID,
			Title:      item.Title,
			Year:       item.Year,
		}, snapshot)

		entry := &catalog.MatchLogEntry{
			JobID:           jobID,
			QueryTitle:      item.Title,
			QueryYear:       item.Year,
			QueryProviderID: item.ProviderID,
		}

		if result == nil {
			report.Unmatched++
			entry.Reviewed = catalog.ReviewPending
			if _, err := r.store.AppendMatchLog(ctx, entry); err != nil {
				return report, fmt.Errorf("log unmatched item: %w", err)
			}
			logger.Debug("no match", logging.String("title", item.Title))
			continue
		}

		entry.Strategy = result.Strategy
		entry.Confidence = result.Confidence
		entry.MovieID = &result.MovieID
		entry.Ambiguous = result.Ambiguous
		entry.AmbiguityReason = result.AmbiguityReason
		if result.Ambiguous {
			report.Ambiguous++
			entry.Reviewed = catalog.ReviewPending
		} else {
			entry.Reviewed = catalog.ReviewConfirmed
		}
		if _, err := r.store.AppendMatchLog(ctx, entry); err != nil {
			return report, fmt.Errorf("log match: %w", err)
		}

		// Ambiguous matches are applied too; the review queue can undo
		// them later.
		if err := r.store.SetEnrichment(ctx, result.MovieID, enrichmentFrom(item)); err != nil {
			return report, fmt.Errorf("merge enrichment: %w", err)
		}
		report.Matched++

		logger.Debug("matched",
			logging.String("title", item.Title),
			logging.String("strategy", result.Strategy),
			logging.Float64("confidence", result.Confidence),
			logging.Bool("ambiguous", result.Ambiguous),
		)
	}

	logger.Info("sync finished",
		logging.Int("matched", report.Matched),
		logging.Int("ambiguous", report.Ambiguous),
		logging.Int("unmatched", report.Unmatched),
	)
	return report, nil
}

func enrichmentFrom(item mediaserver.Item) catalog.Enrichment {
	return catalog.Enrichment{
		ProviderID:      item.ProviderID,
		ProviderTitle:   item.Title,
		ProviderYear:    item.Year,
		CriticRating:    item.CriticRating,
		CommunityRating: item.CommunityRating,
		Genres:          item.Genres,
		Synopsis:        item.Overview,
		ProviderPath:    item.Path,
	}
}
