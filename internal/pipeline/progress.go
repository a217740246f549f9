package pipeline

import (
	"sync"
	"time"
)

// ProgressTracker counts the outcomes of a batch pass. Passes run
// single-writer, but the tracker is safe to snapshot from another
// goroutine (e.g. a periodic progress logger).
type ProgressTracker struct {
	mu sync.RWMutex

	StartedAt time.Time
	Total     int

	Processed int
	Updated   int
	Flagged   int
	Deleted   int
	Matched   int
	NoMatch   int
}

func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{StartedAt: time.Now(), Total: total}
}

func (p *ProgressTracker) IncrProcessed() { p.incr(&p.Processed) }
func (p *ProgressTracker) IncrUpdated()   { p.incr(&p.Updated) }
func (p *ProgressTracker) IncrFlagged()   { p.incr(&p.Flagged) }
func (p *ProgressTracker) IncrDeleted()   { p.incr(&p.Deleted) }
func (p *ProgressTracker) IncrMatched()   { p.incr(&p.Matched) }
func (p *ProgressTracker) IncrNoMatch()   { p.incr(&p.NoMatch) }

func (p *ProgressTracker) incr(field *int) {
	p.mu.Lock()
	*field++
	p.mu.Unlock()
}

// ProgressSnapshot is a point-in-time view of a pass.
type ProgressSnapshot struct {
	Elapsed   time.Duration
	Total     int
	Processed int
	Updated   int
	Flagged   int
	Deleted   int
	Matched   int
	NoMatch   int
}

func (p *ProgressTracker) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ProgressSnapshot{
		Elapsed:   time.Since(p.StartedAt),
		Total:     p.Total,
		Processed: p.Processed,
		Updated:   p.Updated,
		Flagged:   p.Flagged,
		Deleted:   p.Deleted,
		Matched:   p.Matched,
		NoMatch:   p.NoMatch,
	}
}
