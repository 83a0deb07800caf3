package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/pipeline"
)

type fakeWarehouse struct {
	records []audience.CustomerRecord
	err     error
	queries []string
}

func (w *fakeWarehouse) Query(_ context.Context, sql string) ([]audience.CustomerRecord, error) {
	w.queries = append(w.queries, sql)
	if w.err != nil {
		return nil, w.err
	}
	return w.records, nil
}

var _ = Describe("extractor", func() {
	var (
		ctx       context.Context
		wh        *fakeWarehouse
		blobs     *fakeBlobStore
		enq       *fakeEnqueuer
		extractor *pipeline.Extractor
	)

	const container = "fb-audiences-data"

	job := audience.ExtractJob{
		AudienceID:   "23850001",
		AudienceName: "weekly-buyers",
		SQL:          "SELECT * FROM audience_23850001",
		AccessToken:  "token",
		UserEmail:    "ops@example.com",
	}

	BeforeEach(func() {
		ctx = context.Background()
		wh = &fakeWarehouse{}
		blobs = newFakeBlobStore()
		enq = &fakeEnqueuer{}
		extractor = pipeline.NewExtractor(wh, blobs, enq, 50000, container)
	})

	It("stages a small result set as a single partition file", func() {
		wh.records = makeRecords(120)

		Expect(extractor.Extract(ctx, job)).To(Succeed())
		Expect(wh.queries).To(ConsistOf("SELECT * FROM audience_23850001"))

		data, err := blobs.Download(ctx, container, "23850001/23850001.json")
		Expect(err).To(BeNil())

		var staged []audience.CustomerRecord
		Expect(json.Unmarshal(data, &staged)).To(Succeed())
		Expect(staged).To(HaveLen(120))

		Expect(enq.uploads).To(HaveLen(1))
		Expect(enq.uploads[0].BlobPaths).To(Equal([]string{"23850001/23850001.json"}))
		Expect(enq.uploads[0].ContainerName).To(Equal(container))
		Expect(enq.uploads[0].AccessToken).To(Equal("token"))
	})

	It("splits a large result set into numbered chunk files", func() {
		wh.records = makeRecords(120000)

		Expect(extractor.Extract(ctx, job)).To(Succeed())

		Expect(enq.uploads).To(HaveLen(1))
		Expect(enq.uploads[0].BlobPaths).To(Equal([]string{
			"23850001/23850001_chunk1.json",
			"23850001/23850001_chunk2.json",
			"23850001/23850001_chunk3.json",
		}))

		data, err := blobs.Download(ctx, container, "23850001/23850001_chunk3.json")
		Expect(err).To(BeNil())
		var staged []audience.CustomerRecord
		Expect(json.Unmarshal(data, &staged)).To(Succeed())
		Expect(staged).To(HaveLen(20000))
	})

	It("does not enqueue anything when the query returns no rows", func() {
		Expect(extractor.Extract(ctx, job)).To(Succeed())
		Expect(enq.uploads).To(BeEmpty())
		Expect(blobs.objects).To(BeEmpty())
	})

	It("carries the replace flag through to the upload job", func() {
		wh.records = makeRecords(10)
		replaceJob := job
		replaceJob.IsReplace = true

		Expect(extractor.Extract(ctx, replaceJob)).To(Succeed())
		Expect(enq.uploads).To(HaveLen(1))
		Expect(enq.uploads[0].IsReplace).To(BeTrue())
	})

	It("honors an explicit container name", func() {
		wh.records = makeRecords(10)
		customJob := job
		customJob.ContainerName = "custom-container"

		Expect(extractor.Extract(ctx, customJob)).To(Succeed())
		_, err := blobs.Download(ctx, "custom-container", "23850001/23850001.json")
		Expect(err).To(BeNil())
	})

	It("surfaces warehouse errors so the job can retry", func() {
		wh.err = errors.New("connection refused")

		Expect(extractor.Extract(ctx, job)).To(MatchError("connection refused"))
		Expect(enq.uploads).To(BeEmpty())
	})
})
