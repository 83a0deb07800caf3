package audience

import "encoding/json"

// UploadDelta is the portion of one upload response folded into the
// accumulator: received/invalid counts, invalid samples and the session id
// reported by the platform for that batch.
type UploadDelta struct {
	SessionID           string
	NumReceived         int64
	NumInvalidEntries   int64
	InvalidEntrySamples []json.RawMessage
}

// UploadAccumulator aggregates the per-batch responses of one populate or
// replace run. It is local to a single handler invocation and mutated only
// by the sequential batch loop.
//
// SessionID is last-write-wins: every batch response overwrites it. For a
// replace run all batches share one session so the value is stable; for a
// populate run only the final batch's session id survives, which matches the
// historical behavior of the system.
type UploadAccumulator struct {
	SessionID           string
	NumReceived         int64
	NumInvalidEntries   int64
	InvalidEntrySamples []json.RawMessage
}

// Apply folds one batch delta into the accumulator.
func (a *UploadAccumulator) Apply(d UploadDelta) {
	if d.SessionID != "" {
		a.SessionID = d.SessionID
	}
	a.NumReceived += d.NumReceived
	a.NumInvalidEntries += d.NumInvalidEntries
	a.InvalidEntrySamples = append(a.InvalidEntrySamples, d.InvalidEntrySamples...)
}

// ExpectedSize is the number of records the platform acknowledged as valid,
// floored at zero.
func (a *UploadAccumulator) ExpectedSize() int64 {
	if n := a.NumReceived - a.NumInvalidEntries; n > 0 {
		return n
	}
	return 0
}
