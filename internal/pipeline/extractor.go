package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/blob"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/warehouse"
)

// Extractor runs the warehouse query for one audience and stages the result
// set as size-bounded partition files for the uploader.
type Extractor struct {
	warehouse warehouse.Executor
	blobs     blob.Store
	enq       Enqueuer

	fileChunkSize    int
	defaultContainer string
}

func NewExtractor(wh warehouse.Executor, blobs blob.Store, enq Enqueuer, fileChunkSize int, defaultContainer string) *Extractor {
	return &Extractor{
		warehouse:        wh,
		blobs:            blobs,
		enq:              enq,
		fileChunkSize:    fileChunkSize,
		defaultContainer: defaultContainer,
	}
}

func (e *Extractor) Extract(ctx context.Context, job audience.ExtractJob) error {
	logger := zap.S().Named("extractor").With("audience_id", job.AudienceID)

	records, err := e.warehouse.Query(ctx, job.SQL)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		logger.Infow("query returned no rows, nothing to stage")
		return nil
	}

	container := job.ContainerName
	if container == "" {
		container = e.defaultContainer
	}
	if err := e.blobs.EnsureContainer(ctx, container); err != nil {
		return err
	}

	blobPaths, err := e.writePartitions(ctx, container, job.AudienceID, records)
	if err != nil {
		return err
	}
	logger.Infow("partition files written", "records", len(records), "files", len(blobPaths))

	if len(blobPaths) == 0 {
		logger.Infow("no partition files written, exiting")
		return nil
	}

	return e.enq.EnqueueUpload(ctx, audience.Job{
		AudienceID:    job.AudienceID,
		AudienceName:  job.AudienceName,
		AccessToken:   job.AccessToken,
		ContainerName: container,
		BlobPaths:     blobPaths,
		UserEmail:     job.UserEmail,
		IsReplace:     job.IsReplace,
	})
}

// writePartitions serializes the records into one blob per file chunk. A
// result set that fits into a single file keeps the short path name.
func (e *Extractor) writePartitions(ctx context.Context, container, audienceID string, records []audience.CustomerRecord) ([]string, error) {
	chunks := audience.Chunk(records, e.fileChunkSize)

	var blobPaths []string
	for i, chunk := range chunks {
		path := fmt.Sprintf("%s/%s.json", audienceID, audienceID)
		if len(chunks) > 1 {
			path = fmt.Sprintf("%s/%s_chunk%d.json", audienceID, audienceID, i+1)
		}

		data, err := json.Marshal(chunk)
		if err != nil {
			return nil, err
		}
		if err := e.blobs.Upload(ctx, container, path, data); err != nil {
			return nil, err
		}
		blobPaths = append(blobPaths, path)
	}
	return blobPaths, nil
}
