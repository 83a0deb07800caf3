package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/blob"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/notify"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/platform"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store/model"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/metrics"
)

const (
	ModePopulate = "populate"
	ModeReplace  = "replace"
)

// Uploader consumes one audience job: it reads the partition files the
// extractor wrote, hashes and batches the records, and feeds them to the
// platform's ingestion endpoints. Populate adds records incrementally;
// Replace swaps the audience wholesale under a single session.
type Uploader struct {
	blobs    blob.Store
	platform PlatformAPI
	notifier notify.Notifier
	enq      Enqueuer
	runs     store.Run

	populateBatchSize int
	replaceBatchSize  int
}

func NewUploader(blobs blob.Store, api PlatformAPI, notifier notify.Notifier, enq Enqueuer, runs store.Run, populateBatchSize, replaceBatchSize int) *Uploader {
	return &Uploader{
		blobs:             blobs,
		platform:          api,
		notifier:          notifier,
		enq:               enq,
		runs:              runs,
		populateBatchSize: populateBatchSize,
		replaceBatchSize:  replaceBatchSize,
	}
}

// Populate processes each partition file independently: a missing or empty
// file is skipped, everything else is batched and added to the audience.
func (u *Uploader) Populate(ctx context.Context, job audience.Job) error {
	logger := zap.S().Named("uploader").With("audience_id", job.AudienceID, "mode", ModePopulate)

	var acc audience.UploadAccumulator
	for _, path := range job.BlobPaths {
		records, found, err := u.loadPartition(ctx, job.ContainerName, path)
		if err != nil {
			return u.failJob(ctx, job, ModePopulate, err)
		}
		if !found {
			logger.Warnw("partition file missing or empty, skipping", "path", path)
			continue
		}

		for _, batch := range audience.Chunk(records, u.populateBatchSize) {
			payload := platform.UploadPayload{
				Schema: audience.Schema(),
				Data:   audience.HashRecords(batch),
			}
			resp, err := u.platform.AddUsers(ctx, job.AudienceID, job.AccessToken, payload)
			if err != nil {
				return u.failJob(ctx, job, ModePopulate, err)
			}
			acc.Apply(responseDelta(resp))
			metrics.IncreaseUploadBatchesMetric(ModePopulate)
			metrics.AddRecordsUploadedMetric(ModePopulate, resp.NumReceived)
			metrics.AddRecordsInvalidMetric(ModePopulate, resp.NumInvalidEntries)
		}
		logger.Infow("partition file uploaded", "path", path, "records", len(records))
	}

	u.finishJob(ctx, job, ModePopulate, &acc)
	return nil
}

// Replace downloads and concatenates every partition file before chunking,
// then submits the batches in order under one session id.
func (u *Uploader) Replace(ctx context.Context, job audience.Job) error {
	logger := zap.S().Named("uploader").With("audience_id", job.AudienceID, "mode", ModeReplace)

	var combined []audience.CustomerRecord
	for _, path := range job.BlobPaths {
		records, found, err := u.loadPartition(ctx, job.ContainerName, path)
		if err != nil {
			return u.failJob(ctx, job, ModeReplace, err)
		}
		if !found {
			logger.Warnw("partition file missing or empty, skipping", "path", path)
			continue
		}
		combined = append(combined, records...)
	}

	if len(combined) == 0 {
		logger.Warnw("no customer data found in partition files")
		u.cleanupPartitions(ctx, job)
		u.recordRun(ctx, job, ModeReplace, &audience.UploadAccumulator{}, model.RunStatusEmpty, nil)
		u.notify(ctx, job.UserEmail,
			fmt.Sprintf("Audience Replace Skipped: %s", job.AudienceName),
			fmt.Sprintf("Replace for audience %s found no customer data in its partition files. Nothing was uploaded.", job.AudienceID))
		return nil
	}

	sessionID := time.Now().UnixNano()
	batches := audience.Chunk(combined, u.replaceBatchSize)

	var acc audience.UploadAccumulator
	for i, batch := range batches {
		payload := platform.UploadPayload{
			Schema: audience.Schema(),
			Data:   audience.HashRecords(batch),
		}
		session := platform.ReplaceSession{
			SessionID:         sessionID,
			BatchSeq:          i + 1,
			LastBatchFlag:     i == len(batches)-1,
			EstimatedNumTotal: len(combined),
		}
		resp, err := u.platform.ReplaceUsers(ctx, job.AudienceID, job.AccessToken, payload, session)
		if err != nil {
			return u.failJob(ctx, job, ModeReplace, err)
		}
		acc.Apply(responseDelta(resp))
		metrics.IncreaseUploadBatchesMetric(ModeReplace)
		metrics.AddRecordsUploadedMetric(ModeReplace, resp.NumReceived)
		metrics.AddRecordsInvalidMetric(ModeReplace, resp.NumInvalidEntries)
	}

	logger.Infow("replace session completed", "session_id", sessionID, "batches", len(batches), "records", len(combined))
	u.finishJob(ctx, job, ModeReplace, &acc)
	return nil
}

// loadPartition fetches and deserializes one partition file. found=false
// covers both an absent blob and an empty record set; neither is fatal.
func (u *Uploader) loadPartition(ctx context.Context, container, path string) ([]audience.CustomerRecord, bool, error) {
	exists, err := u.blobs.Exists(ctx, container, path)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	data, err := u.blobs.Download(ctx, container, path)
	if err != nil {
		return nil, false, err
	}

	var records []audience.CustomerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("deserializing partition file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records, true, nil
}

// finishJob runs the success path: partition cleanup, delayed status check,
// run history, notification. Only the upload itself may fail a job; failures
// here are logged and swallowed.
func (u *Uploader) finishJob(ctx context.Context, job audience.Job, mode string, acc *audience.UploadAccumulator) {
	logger := zap.S().Named("uploader").With("audience_id", job.AudienceID, "mode", mode)

	u.cleanupPartitions(ctx, job)

	statusCheck := audience.StatusCheckJob{
		AudienceID:   job.AudienceID,
		AudienceName: job.AudienceName,
		UserEmail:    job.UserEmail,
		ExpectedSize: acc.ExpectedSize(),
	}
	if err := u.enq.EnqueueStatusCheck(ctx, statusCheck); err != nil {
		logger.Errorw("failed to enqueue status check", "error", err)
	}

	u.recordRun(ctx, job, mode, acc, model.RunStatusSucceeded, nil)

	u.notify(ctx, job.UserEmail,
		fmt.Sprintf("Audience %s Completed: %s", titleMode(mode), job.AudienceName),
		fmt.Sprintf("The %s process for audience %s has completed.\nnum_received: %d, num_invalid_entries: %d",
			mode, job.AudienceID, acc.NumReceived, acc.NumInvalidEntries))
}

// failJob runs the failure path for a fatal upload error: best-effort
// cleanup, failure notification, run history, then the error propagates so
// the queue can redeliver.
func (u *Uploader) failJob(ctx context.Context, job audience.Job, mode string, cause error) error {
	zap.S().Named("uploader").Errorw("upload failed", "audience_id", job.AudienceID, "mode", mode, "error", cause)

	u.cleanupPartitions(ctx, job)
	u.recordRun(ctx, job, mode, &audience.UploadAccumulator{}, model.RunStatusFailed, cause)
	u.notify(ctx, job.UserEmail,
		fmt.Sprintf("Audience %s Failed: %s", titleMode(mode), job.AudienceName),
		fmt.Sprintf("The %s process for audience %s failed.\nError: %v", mode, job.AudienceID, cause))
	return cause
}

// cleanupPartitions deletes the job's partition files. It operates on the
// already-parsed job and never fails the caller.
func (u *Uploader) cleanupPartitions(ctx context.Context, job audience.Job) {
	for _, path := range job.BlobPaths {
		if err := u.blobs.Delete(ctx, job.ContainerName, path); err != nil {
			zap.S().Named("uploader").Errorw("failed to delete partition file", "path", path, "error", err)
		}
	}
}

func (u *Uploader) recordRun(ctx context.Context, job audience.Job, mode string, acc *audience.UploadAccumulator, status model.RunStatus, cause error) {
	if u.runs == nil {
		return
	}
	run := &model.UploadRun{
		AudienceID:        job.AudienceID,
		AudienceName:      job.AudienceName,
		Mode:              mode,
		SessionID:         acc.SessionID,
		NumReceived:       acc.NumReceived,
		NumInvalidEntries: acc.NumInvalidEntries,
		ExpectedSize:      acc.ExpectedSize(),
		Status:            status,
	}
	if cause != nil {
		msg := cause.Error()
		run.Error = &msg
	}
	if err := u.runs.Create(ctx, run); err != nil {
		zap.S().Named("uploader").Errorw("failed to record run", "audience_id", job.AudienceID, "error", err)
	}
}

func (u *Uploader) notify(ctx context.Context, recipient, subject, body string) {
	if err := u.notifier.Send(ctx, recipient, subject, body); err != nil {
		zap.S().Named("uploader").Errorw("failed to send notification", "recipient", recipient, "error", err)
	}
}

func responseDelta(resp *platform.UploadResponse) audience.UploadDelta {
	return audience.UploadDelta{
		SessionID:           resp.SessionID,
		NumReceived:         resp.NumReceived,
		NumInvalidEntries:   resp.NumInvalidEntries,
		InvalidEntrySamples: resp.InvalidEntrySamples,
	}
}

func titleMode(mode string) string {
	if mode == ModeReplace {
		return "Replace"
	}
	return "Populate"
}
