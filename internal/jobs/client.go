package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/pipeline"
)

const queueMaxWorkers = 10

type Client struct {
	*river.Client[pgx.Tx]
}

// NewClient builds the river client with one worker per pipeline stage. The
// replace queue runs one job at a time so a replace session's batches are
// never interleaved with a competing run for the same audience.
func NewClient(pool *pgxpool.Pool, extractor *pipeline.Extractor, uploader *pipeline.Uploader, verifier *pipeline.Verifier) (*Client, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewExtractWorker(extractor))
	river.AddWorker(workers, NewPopulateWorker(uploader))
	river.AddWorker(workers, NewReplaceWorker(uploader))
	river.AddWorker(workers, NewStatusCheckWorker(verifier))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			ExtractQueue:     {MaxWorkers: queueMaxWorkers},
			PopulateQueue:    {MaxWorkers: queueMaxWorkers},
			ReplaceQueue:     {MaxWorkers: 1},
			StatusCheckQueue: {MaxWorkers: queueMaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}

// NewInsertOnlyClient builds a client that can enqueue jobs but runs no
// workers; used by the enqueue command.
func NewInsertOnlyClient(pool *pgxpool.Pool) (*Client, error) {
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, err
	}
	return &Client{Client: riverClient}, nil
}

// InsertExtractJob kicks off the pipeline for one audience and returns the
// queued job id.
func (c *Client) InsertExtractJob(ctx context.Context, args ExtractArgs) (int64, error) {
	if err := validate.Struct(args); err != nil {
		return 0, err
	}
	result, err := c.Insert(ctx, args, nil)
	if err != nil {
		return 0, err
	}
	return result.Job.ID, nil
}
