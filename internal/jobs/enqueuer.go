package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
)

// Enqueuer inserts the next pipeline stage from inside a running worker. It
// resolves the river client from the work context, so one instance serves
// every worker without a construction cycle.
type Enqueuer struct {
	statusCheckDelay time.Duration
}

func NewEnqueuer(statusCheckDelay time.Duration) *Enqueuer {
	return &Enqueuer{statusCheckDelay: statusCheckDelay}
}

// EnqueueUpload routes the job to the populate or replace queue based on its
// replace flag.
func (e *Enqueuer) EnqueueUpload(ctx context.Context, job audience.Job) error {
	args := UploadArgs{
		AudienceID:    job.AudienceID,
		AudienceName:  job.AudienceName,
		AccessToken:   job.AccessToken,
		ContainerName: job.ContainerName,
		BlobPaths:     job.BlobPaths,
		UserEmail:     job.UserEmail,
	}

	client := river.ClientFromContext[pgx.Tx](ctx)
	var err error
	if job.IsReplace {
		_, err = client.Insert(ctx, ReplaceArgs{UploadArgs: args}, nil)
	} else {
		_, err = client.Insert(ctx, PopulateArgs{UploadArgs: args}, nil)
	}
	return err
}

// EnqueueStatusCheck schedules the verification run after the configured
// delay; the queue holds the job invisible until then.
func (e *Enqueuer) EnqueueStatusCheck(ctx context.Context, job audience.StatusCheckJob) error {
	args := StatusCheckArgs{
		AudienceID:   job.AudienceID,
		AudienceName: job.AudienceName,
		UserEmail:    job.UserEmail,
		ExpectedSize: job.ExpectedSize,
	}

	client := river.ClientFromContext[pgx.Tx](ctx)
	_, err := client.Insert(ctx, args, &river.InsertOpts{
		ScheduledAt: time.Now().Add(e.statusCheckDelay),
	})
	return err
}
