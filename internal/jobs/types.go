package jobs

import (
	"github.com/go-playground/validator/v10"
	"github.com/riverqueue/river"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
)

const (
	ExtractQueue     = "extract"
	PopulateQueue    = "populate"
	ReplaceQueue     = "replace"
	StatusCheckQueue = "status-check"

	MaxJobRetries         = 5
	MaxStatusCheckRetries = 3
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExtractArgs triggers one warehouse extraction. Stored in river_job.args as
// JSON.
type ExtractArgs struct {
	AudienceID    string `json:"audienceId" validate:"required"`
	AudienceName  string `json:"audienceName" validate:"required"`
	SQL           string `json:"sql" validate:"required"`
	AccessToken   string `json:"facebookAccessToken" validate:"required"`
	IsReplace     bool   `json:"isReplace"`
	ContainerName string `json:"containerName"`
	UserEmail     string `json:"userEmail" validate:"required,email"`
}

func (ExtractArgs) Kind() string {
	return "audience_extract"
}

func (ExtractArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       ExtractQueue,
		MaxAttempts: MaxJobRetries,
	}
}

func (a ExtractArgs) toJob() audience.ExtractJob {
	return audience.ExtractJob{
		AudienceID:    a.AudienceID,
		AudienceName:  a.AudienceName,
		SQL:           a.SQL,
		AccessToken:   a.AccessToken,
		IsReplace:     a.IsReplace,
		ContainerName: a.ContainerName,
		UserEmail:     a.UserEmail,
	}
}

// UploadArgs is shared by the populate and replace stages; only the kind and
// queue differ.
type UploadArgs struct {
	AudienceID    string   `json:"audienceId" validate:"required"`
	AudienceName  string   `json:"audienceName" validate:"required"`
	AccessToken   string   `json:"facebookAccessToken" validate:"required"`
	ContainerName string   `json:"containerName" validate:"required"`
	BlobPaths     []string `json:"blobPaths" validate:"required,min=1"`
	UserEmail     string   `json:"userEmail" validate:"required,email"`
}

func (a UploadArgs) toJob(isReplace bool) audience.Job {
	return audience.Job{
		AudienceID:    a.AudienceID,
		AudienceName:  a.AudienceName,
		AccessToken:   a.AccessToken,
		ContainerName: a.ContainerName,
		BlobPaths:     a.BlobPaths,
		UserEmail:     a.UserEmail,
		IsReplace:     isReplace,
	}
}

type PopulateArgs struct {
	UploadArgs
}

func (PopulateArgs) Kind() string {
	return "audience_populate"
}

func (PopulateArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       PopulateQueue,
		MaxAttempts: MaxJobRetries,
	}
}

type ReplaceArgs struct {
	UploadArgs
}

func (ReplaceArgs) Kind() string {
	return "audience_replace"
}

func (ReplaceArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       ReplaceQueue,
		MaxAttempts: MaxJobRetries,
	}
}

type StatusCheckArgs struct {
	AudienceID   string `json:"audienceId" validate:"required"`
	AudienceName string `json:"audienceName" validate:"required"`
	UserEmail    string `json:"userEmail" validate:"required,email"`
	ExpectedSize int64  `json:"expectedSize" validate:"gte=0"`
}

func (StatusCheckArgs) Kind() string {
	return "audience_status_check"
}

func (StatusCheckArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       StatusCheckQueue,
		MaxAttempts: MaxStatusCheckRetries,
	}
}

func (a StatusCheckArgs) toJob() audience.StatusCheckJob {
	return audience.StatusCheckJob{
		AudienceID:   a.AudienceID,
		AudienceName: a.AudienceName,
		UserEmail:    a.UserEmail,
		ExpectedSize: a.ExpectedSize,
	}
}
