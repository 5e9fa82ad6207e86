package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docintel/internal/pipeline"
)

// Job is the smallest useful unit. Extend as needed later (retry, priority,
// per-job credentials already travel in Options).
type Job struct {
	Path        string
	Options     pipeline.Options
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps a job with a trace ID and submission time.
func NewJob(path string, opts pipeline.Options) Job {
	return Job{
		Path:        path,
		Options:     opts,
		SubmittedAt: time.Now(),
		TraceID:     uuid.New().String(),
	}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
