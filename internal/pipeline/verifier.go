package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/notify"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/platform"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store/model"
	"github.com/InnovateOnDemand/DOMGTrigger/pkg/metrics"
)

const (
	// Estimated-count ceiling below which an audience is suspiciously small.
	lowSizeThreshold = 1000
	// Upper-bound-to-expected ratio below which the match rate is alarming.
	poorMatchRateFloor = 0.10
)

const (
	AlertAudienceNotFound = "Audience Not Found"
	AlertStatusAPIError   = "Status Check API Error"
	AlertLowEstimatedSize = "Low Estimated Size"
	AlertPoorMatchRate    = "Poor Match Rate"
)

// Verifier polls the audience-status endpoint once per status-check job and
// raises an alert when the resulting audience looks degraded. It runs well
// after the upload so the platform has had time to match.
type Verifier struct {
	platform PlatformAPI
	notifier notify.Notifier
	runs     store.Run

	readyStatusCode int
	alwaysNotify    bool
}

func NewVerifier(api PlatformAPI, notifier notify.Notifier, runs store.Run, readyStatusCode int, alwaysNotify bool) *Verifier {
	return &Verifier{
		platform:        api,
		notifier:        notifier,
		runs:            runs,
		readyStatusCode: readyStatusCode,
		alwaysNotify:    alwaysNotify,
	}
}

// Verify evaluates one status-check job. Every outcome is terminal: the
// verifier alerts or notifies, it never asks for a retry.
func (v *Verifier) Verify(ctx context.Context, job audience.StatusCheckJob) error {
	logger := zap.S().Named("verifier").With("audience_id", job.AudienceID)

	status, err := v.platform.AudienceStatus(ctx, job.AudienceID)
	if err != nil {
		var notFound *platform.ErrAudienceNotFound
		if errors.As(err, &notFound) {
			v.alert(ctx, job, AlertAudienceNotFound,
				fmt.Sprintf("The status check could not find audience %s. It might have been deleted or never fully created.", job.AudienceID))
			v.recordOutcome(ctx, job, model.VerificationNotFound, nil, AlertAudienceNotFound)
			return nil
		}
		logger.Errorw("status check failed", "error", err)
		v.alert(ctx, job, AlertStatusAPIError,
			fmt.Sprintf("Could not check status for audience %s. Error calling API: %v", job.AudienceID, err))
		v.recordOutcome(ctx, job, model.VerificationErrored, nil, AlertStatusAPIError)
		return nil
	}

	lower, upper := int64(-1), int64(-1)
	if status.ApproximateCountLowerBound != nil {
		lower = *status.ApproximateCountLowerBound
	}
	if status.ApproximateCountUpperBound != nil {
		upper = *status.ApproximateCountUpperBound
	}

	switch {
	case lower <= lowSizeThreshold && upper <= lowSizeThreshold && upper != -1:
		v.alert(ctx, job, AlertLowEstimatedSize,
			fmt.Sprintf("Estimated audience size is very low (%d-%d), suggesting few or no matches were found. Expected ~%d.%s",
				lower, upper, job.ExpectedSize, deliveryStatusSuffix(status)))
		v.recordOutcome(ctx, job, model.VerificationAlerted, status, AlertLowEstimatedSize)

	case job.ExpectedSize > 0 && upper != -1 && float64(upper) <= float64(job.ExpectedSize)*poorMatchRateFloor:
		matchPercentage := float64(upper) / float64(job.ExpectedSize) * 100
		v.alert(ctx, job, AlertPoorMatchRate,
			fmt.Sprintf("Estimated audience size upper bound (%d) is less than 10%% of the expected size (%d). Actual match rate: %.1f%%.%s",
				upper, job.ExpectedSize, matchPercentage, deliveryStatusSuffix(status)))
		v.recordOutcome(ctx, job, model.VerificationAlerted, status, AlertPoorMatchRate)

	case status.DeliveryStatus != nil && status.DeliveryStatus.Code != v.readyStatusCode:
		reason := fmt.Sprintf("Audience Not Ready (Status Code: %d)", status.DeliveryStatus.Code)
		v.alert(ctx, job, reason,
			fmt.Sprintf("Audience delivery status indicates it's not ready: %q. Expected Size: ~%d, Actual Size: %d-%d.",
				status.DeliveryStatus.Description, job.ExpectedSize, lower, upper))
		v.recordOutcome(ctx, job, model.VerificationAlerted, status, reason)

	default:
		v.recordOutcome(ctx, job, model.VerificationHealthy, status, "")
		if !v.alwaysNotify {
			logger.Infow("status check passed",
				"lower_bound", lower, "upper_bound", upper, "expected_size", job.ExpectedSize)
			return nil
		}
		body := fmt.Sprintf("Audience ID: %s\nName: %s\nExpected Size: ~%d\nEstimated Size: %d - %d%s",
			status.ID, status.Name, job.ExpectedSize, lower, upper, deliveryStatusSuffix(status))
		if err := v.notifier.Send(ctx, job.UserEmail, fmt.Sprintf("Facebook Audience Status: %s", job.AudienceName), body); err != nil {
			logger.Errorw("failed to send status email", "error", err)
		}
	}
	return nil
}

func (v *Verifier) alert(ctx context.Context, job audience.StatusCheckJob, reason, details string) {
	subject := fmt.Sprintf("ALERT: Facebook Audience Issue (%s) - %s", reason, job.AudienceName)
	body := fmt.Sprintf("An issue was detected for Facebook Custom Audience:\n\nAudience ID: %s\nAudience Name: %s\n\nReason: %s\n\nDetails:\n%s\n\nPlease investigate.",
		job.AudienceID, job.AudienceName, reason, details)

	if err := v.notifier.Send(ctx, job.UserEmail, subject, body); err != nil {
		zap.S().Named("verifier").Errorw("failed to send alert", "audience_id", job.AudienceID, "reason", reason, "error", err)
	}
	metrics.IncreaseAlertsRaisedMetric(reason)
	zap.S().Named("verifier").Warnw("alert raised", "audience_id", job.AudienceID, "reason", reason)
}

// recordOutcome annotates the most recent run for this audience; when no run
// exists (history trimmed, out-of-band check) it only logs.
func (v *Verifier) recordOutcome(ctx context.Context, job audience.StatusCheckJob, outcome model.VerificationOutcome, status *platform.AudienceStatus, note string) {
	if v.runs == nil {
		return
	}
	run, err := v.runs.LatestByAudience(ctx, job.AudienceID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			zap.S().Named("verifier").Errorw("failed to load run history", "audience_id", job.AudienceID, "error", err)
		}
		return
	}

	updates := &model.UploadRun{Verification: &outcome}
	if status != nil {
		updates.VerifiedLower = status.ApproximateCountLowerBound
		updates.VerifiedUpper = status.ApproximateCountUpperBound
	}
	if note != "" {
		updates.VerificationNote = &note
	}
	if err := v.runs.Update(ctx, run.ID, updates); err != nil {
		zap.S().Named("verifier").Errorw("failed to update run history", "audience_id", job.AudienceID, "error", err)
	}
}

func deliveryStatusSuffix(status *platform.AudienceStatus) string {
	if status.DeliveryStatus == nil {
		return ""
	}
	return fmt.Sprintf("\nDelivery Status: %d - %s", status.DeliveryStatus.Code, status.DeliveryStatus.Description)
}
