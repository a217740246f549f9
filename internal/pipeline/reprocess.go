package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lucky-luke36/auto-arbitrage/internal/parser"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

// ReprocessOptions configures a reprocessing run.
type ReprocessOptions struct {
	// Debug keeps unparseable records and flags them for manual review
	// instead of deleting them.
	Debug bool
	// BatchSize is the number of rows committed per transaction.
	BatchSize int
	// CheckpointPath, when set, enables resume across interrupted runs.
	CheckpointPath string
}

// ReprocessReport summarizes a reprocessing run.
type ReprocessReport struct {
	Selected int  `json:"selected"`
	Updated  int  `json:"updated"`
	Flagged  int  `json:"flagged"`
	Deleted  int  `json:"deleted"`
	Resumed  bool `json:"resumed"`
}

// ReprocessMissingMakes re-parses every record whose make is missing.
// Valid parses overwrite make/model/trim and clear the review flag; the
// stored year is kept unless empty. Invalid parses are flagged for manual
// review in debug mode and deleted otherwise. Rows are processed in rowid
// order and committed in batches; a checkpoint written after each commit
// makes an interrupted run resumable without touching committed rows.
func ReprocessMissingMakes(ctx context.Context, cars *repository.CarRepo, p *parser.Parser, opts ReprocessOptions) (*ReprocessReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}

	report := &ReprocessReport{}
	tracker := NewProgressTracker(0)

	var cpm *CheckpointManager
	var afterID int64
	if opts.CheckpointPath != "" {
		cpm = NewCheckpointManager(opts.CheckpointPath)
		cp, err := cpm.Load()
		if err != nil {
			return nil, err
		}
		if cp != nil {
			afterID = cp.LastRowID
			report.Resumed = true
			report.Updated = cp.Stats.Updated
			report.Flagged = cp.Stats.Flagged
			report.Deleted = cp.Stats.Deleted
			slog.Info("resuming reprocess from checkpoint", "after_id", afterID)
		}
	}

	rows, err := cars.MissingMake(ctx, afterID)
	if err != nil {
		return nil, err
	}
	report.Selected = len(rows)
	tracker.Total = len(rows)
	slog.Info("reprocessing records with missing make", "count", len(rows))

	for start := 0; start < len(rows); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		if err := reprocessBatch(ctx, cars, p, batch, opts.Debug, tracker); err != nil {
			return nil, err
		}

		if cpm != nil {
			snap := tracker.Snapshot()
			cp := Checkpoint{LastRowID: batch[len(batch)-1].ID, StartedAt: tracker.StartedAt}
			cp.Stats.Updated = report.Updated + snap.Updated
			cp.Stats.Flagged = report.Flagged + snap.Flagged
			cp.Stats.Deleted = report.Deleted + snap.Deleted
			if err := cpm.Save(cp); err != nil {
				return nil, err
			}
		}
	}

	snap := tracker.Snapshot()
	report.Updated += snap.Updated
	report.Flagged += snap.Flagged
	report.Deleted += snap.Deleted

	if cpm != nil {
		if err := cpm.Delete(); err != nil {
			return nil, err
		}
	}

	slog.Info("reprocess complete",
		"selected", report.Selected,
		"updated", report.Updated,
		"flagged", report.Flagged,
		"deleted", report.Deleted,
	)
	return report, nil
}

func reprocessBatch(ctx context.Context, cars *repository.CarRepo, p *parser.Parser, batch []repository.ReviewRow, debug bool, tracker *ProgressTracker) error {
	tx, err := cars.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, row := range batch {
		tracker.IncrProcessed()
		parsed := p.Parse(row.Title)

		if !parsed.ValidMake {
			if debug {
				if err := cars.FlagManualReview(ctx, tx, row.ID); err != nil {
					return err
				}
				tracker.IncrFlagged()
				slog.Debug("flagged for review", "id", row.ID, "title", row.Title)
			} else {
				if err := cars.Delete(ctx, tx, row.ID); err != nil {
					return err
				}
				tracker.IncrDeleted()
				slog.Debug("dropped record", "id", row.ID, "guessed_make", parsed.Make)
			}
			continue
		}

		// stored year wins over the parsed one when present
		year := parsed.Year
		if row.Year != "" {
			year = row.Year
		}

		if err := cars.ApplyParsed(ctx, tx, row.ID, year, parsed.Make, parsed.Model, parsed.Trim); err != nil {
			return err
		}
		tracker.IncrUpdated()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
