package pipeline

import (
	"context"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/platform"
)

// PlatformAPI is the slice of the Facebook client the pipeline consumes.
type PlatformAPI interface {
	AddUsers(ctx context.Context, audienceID, accessToken string, payload platform.UploadPayload) (*platform.UploadResponse, error)
	ReplaceUsers(ctx context.Context, audienceID, accessToken string, payload platform.UploadPayload, session platform.ReplaceSession) (*platform.UploadResponse, error)
	AudienceStatus(ctx context.Context, audienceID string) (*platform.AudienceStatus, error)
}

// Enqueuer hands a finished stage off to the next one. The status check is
// inserted with the configured visibility delay; the implementation owns that
// delay, not the caller.
type Enqueuer interface {
	EnqueueUpload(ctx context.Context, job audience.Job) error
	EnqueueStatusCheck(ctx context.Context, job audience.StatusCheckJob) error
}
