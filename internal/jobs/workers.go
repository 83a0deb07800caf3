package jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/pipeline"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/metrics"
)

const (
	ExtractJobTimeout     = 10 * time.Minute
	UploadJobTimeout      = 60 * time.Minute
	StatusCheckJobTimeout = 5 * time.Minute
)

type ExtractWorker struct {
	river.WorkerDefaults[ExtractArgs]
	extractor *pipeline.Extractor
}

func NewExtractWorker(extractor *pipeline.Extractor) *ExtractWorker {
	return &ExtractWorker{extractor: extractor}
}

func (w *ExtractWorker) Timeout(job *river.Job[ExtractArgs]) time.Duration {
	return ExtractJobTimeout
}

func (w *ExtractWorker) Work(ctx context.Context, job *river.Job[ExtractArgs]) error {
	if err := validate.Struct(job.Args); err != nil {
		return reportOutcome(job.Args.Kind(), err)
	}
	return reportOutcome(job.Args.Kind(), w.extractor.Extract(ctx, job.Args.toJob()))
}

type PopulateWorker struct {
	river.WorkerDefaults[PopulateArgs]
	uploader *pipeline.Uploader
}

func NewPopulateWorker(uploader *pipeline.Uploader) *PopulateWorker {
	return &PopulateWorker{uploader: uploader}
}

func (w *PopulateWorker) Timeout(job *river.Job[PopulateArgs]) time.Duration {
	return UploadJobTimeout
}

func (w *PopulateWorker) Work(ctx context.Context, job *river.Job[PopulateArgs]) error {
	if err := validate.Struct(job.Args); err != nil {
		return reportOutcome(job.Args.Kind(), err)
	}
	return reportOutcome(job.Args.Kind(), w.uploader.Populate(ctx, job.Args.toJob(false)))
}

type ReplaceWorker struct {
	river.WorkerDefaults[ReplaceArgs]
	uploader *pipeline.Uploader
}

func NewReplaceWorker(uploader *pipeline.Uploader) *ReplaceWorker {
	return &ReplaceWorker{uploader: uploader}
}

func (w *ReplaceWorker) Timeout(job *river.Job[ReplaceArgs]) time.Duration {
	return UploadJobTimeout
}

func (w *ReplaceWorker) Work(ctx context.Context, job *river.Job[ReplaceArgs]) error {
	if err := validate.Struct(job.Args); err != nil {
		return reportOutcome(job.Args.Kind(), err)
	}
	return reportOutcome(job.Args.Kind(), w.uploader.Replace(ctx, job.Args.toJob(true)))
}

type StatusCheckWorker struct {
	river.WorkerDefaults[StatusCheckArgs]
	verifier *pipeline.Verifier
}

func NewStatusCheckWorker(verifier *pipeline.Verifier) *StatusCheckWorker {
	return &StatusCheckWorker{verifier: verifier}
}

func (w *StatusCheckWorker) Timeout(job *river.Job[StatusCheckArgs]) time.Duration {
	return StatusCheckJobTimeout
}

func (w *StatusCheckWorker) Work(ctx context.Context, job *river.Job[StatusCheckArgs]) error {
	if err := validate.Struct(job.Args); err != nil {
		return reportOutcome(job.Args.Kind(), err)
	}
	return reportOutcome(job.Args.Kind(), w.verifier.Verify(ctx, job.Args.toJob()))
}

func reportOutcome(kind string, err error) error {
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	metrics.IncreaseJobsProcessedMetric(kind, status)
	return err
}
