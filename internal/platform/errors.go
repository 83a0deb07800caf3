package platform

import "fmt"

// ErrAudienceNotFound signals that the status endpoint does not know the
// audience; the verifier treats it as terminal.
type ErrAudienceNotFound struct {
	error
}

func NewErrAudienceNotFound(audienceID string) *ErrAudienceNotFound {
	return &ErrAudienceNotFound{fmt.Errorf("audience %s not found", audienceID)}
}

// ErrUploadRejected carries the non-success body of an ingestion call. It is
// fatal for the whole job.
type ErrUploadRejected struct {
	error
	StatusCode int
}

func NewErrUploadRejected(statusCode int, body string) *ErrUploadRejected {
	return &ErrUploadRejected{
		error:      fmt.Errorf("facebook api error (status %d): %s", statusCode, body),
		StatusCode: statusCode,
	}
}
