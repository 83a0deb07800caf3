package platform

import "encoding/json"

// UploadPayload is the "payload" multipart field of both the add and replace
// endpoints: the declared schema plus one row of hashes per customer.
type UploadPayload struct {
	Schema []string   `json:"schema"`
	Data   [][]string `json:"data"`
}

// ReplaceSession is the "session" multipart field of the replace endpoint.
// All batches of one replace run share SessionID; BatchSeq starts at 1 and
// LastBatchFlag is true only on the final batch.
type ReplaceSession struct {
	SessionID         int64 `json:"session_id"`
	BatchSeq          int   `json:"batch_seq"`
	LastBatchFlag     bool  `json:"last_batch_flag"`
	EstimatedNumTotal int   `json:"estimated_num_total"`
}

// UploadResponse is the acknowledgement returned by both ingestion endpoints.
type UploadResponse struct {
	SessionID           string            `json:"session_id"`
	NumReceived         int64             `json:"num_received"`
	NumInvalidEntries   int64             `json:"num_invalid_entries"`
	InvalidEntrySamples []json.RawMessage `json:"invalid_entry_samples"`
}

// AudienceStatus is the response of the audience-status endpoint. The count
// bounds are pointers: the platform omits them while the audience is still
// being matched.
type AudienceStatus struct {
	Name                       string          `json:"name"`
	ID                         string          `json:"id"`
	Description                string          `json:"description"`
	ApproximateCountLowerBound *int64          `json:"approximate_count_lower_bound"`
	ApproximateCountUpperBound *int64          `json:"approximate_count_upper_bound"`
	DeliveryStatus             *DeliveryStatus `json:"delivery_status"`
}

type DeliveryStatus struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}
