package audience

// CustomerRecord is one row of identity data as produced by the warehouse
// query. Field names mirror the query's column vocabulary; a missing column
// is an empty string, never an absent key.
type CustomerRecord struct {
	Email1  string `json:"email1"`
	Email2  string `json:"email2"`
	Email3  string `json:"email3"`
	Phone1  string `json:"phone1"`
	Phone2  string `json:"phone2"`
	Phone3  string `json:"phone3"`
	FN      string `json:"fn"`
	LN      string `json:"ln"`
	Zip     string `json:"zip"`
	CT      string `json:"ct"`
	ST      string `json:"st"`
	Country string `json:"country"`
	DOBY    string `json:"doby"`
	Gen     string `json:"gen"`
	Age     string `json:"age,omitempty"`
}

// Job describes one populate or replace run. BlobPaths reference the
// partition files written by the extractor; they are deleted once the job
// has been consumed, whether or not the upload succeeded.
type Job struct {
	AudienceID    string
	AudienceName  string
	AccessToken   string
	ContainerName string
	BlobPaths     []string
	UserEmail     string
	IsReplace     bool
}

// ExtractJob carries everything the extractor needs: the query text plus the
// identity of the audience the result set will feed.
type ExtractJob struct {
	AudienceID    string
	AudienceName  string
	SQL           string
	AccessToken   string
	IsReplace     bool
	ContainerName string
	UserEmail     string
}

// StatusCheckJob is handed to the verifier after the configured delay.
type StatusCheckJob struct {
	AudienceID   string
	AudienceName string
	UserEmail    string
	ExpectedSize int64
}
