package model

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusEmpty     RunStatus = "empty"
)

type VerificationOutcome string

const (
	VerificationHealthy  VerificationOutcome = "healthy"
	VerificationAlerted  VerificationOutcome = "alerted"
	VerificationErrored  VerificationOutcome = "errored"
	VerificationNotFound VerificationOutcome = "not_found"
)

// UploadRun records one terminal populate/replace outcome, later annotated by
// the verifier with the audience's estimated size.
type UploadRun struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	AudienceID        string    `gorm:"index"`
	AudienceName      string
	Mode              string // populate or replace
	SessionID         string
	NumReceived       int64
	NumInvalidEntries int64
	ExpectedSize      int64
	Status            RunStatus
	Error             *string

	Verification     *VerificationOutcome
	VerifiedLower    *int64
	VerifiedUpper    *int64
	VerificationNote *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
