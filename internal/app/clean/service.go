package clean

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rustysweeper/internal/domain/detect"
	"rustysweeper/internal/domain/model"
)

// Progress is shared between the orchestrator workers and a display
// goroutine. Completed is sampled lock-free; the current project name is
// guarded because it is a string swap.
type Progress struct {
	completed atomic.Int64
	total     int64

	mu      sync.Mutex
	current string
}

func NewProgress(total int) *Progress {
	return &Progress{total: int64(total)}
}

func (p *Progress) start(name string) {
	p.mu.Lock()
	p.current = name
	p.mu.Unlock()
}

func (p *Progress) done() {
	p.completed.Add(1)
}

// Snapshot returns completed count, total count, and the project most
// recently picked up by a worker.
func (p *Progress) Snapshot() (int64, int64, string) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	return p.completed.Load(), p.total, current
}

// Service cleans a batch of detected projects in parallel, bounded by
// Jobs workers. One failing project never aborts the rest.
type Service struct {
	Registry *detect.Registry
	Executor *Executor
	Jobs     int
	Progress *Progress
}

func (s *Service) Run(ctx context.Context, projects []model.DetectedProject) ([]model.CleanResult, model.CleanSummary) {
	jobs := s.Jobs
	if jobs <= 0 {
		jobs = 4
	}

	results := make([]model.CleanResult, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			if s.Progress != nil {
				s.Progress.start(p.Name)
				defer s.Progress.done()
			}
			results[i] = s.cleanOne(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results, Summarize(results)
}

func (s *Service) cleanOne(ctx context.Context, p model.DetectedProject) model.CleanResult {
	det, ok := s.Registry.Lookup(p.Type)
	if !ok {
		return model.CleanResult{Project: p, Status: model.CleanSkipped, Message: "unknown project type"}
	}
	if len(p.ArtifactPaths) == 0 && det.CleanCommand == "" {
		return model.CleanResult{Project: p, Status: model.CleanSkipped, Message: "nothing to clean"}
	}
	return s.Executor.Clean(ctx, p, det.CleanCommand)
}

// Summarize tallies per-project results into the run summary.
func Summarize(results []model.CleanResult) model.CleanSummary {
	var sum model.CleanSummary
	for _, r := range results {
		switch r.Status {
		case model.CleanSuccess:
			sum.Cleaned++
			sum.TotalFreed += r.FreedBytes
		case model.CleanFailed:
			sum.Failed++
		case model.CleanSkipped:
			sum.Skipped++
		}
	}
	return sum
}
