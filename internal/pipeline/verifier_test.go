package pipeline_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/pipeline"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/platform"
	"github.com/InnovateOnDemand/DOMGTrigger/internal/store/model"
)

func i64(v int64) *int64 { return &v }

var _ = Describe("verifier", func() {
	var (
		ctx      context.Context
		api      *fakePlatform
		notifier *fakeNotifier
		runs     *fakeRunStore
		verifier *pipeline.Verifier
	)

	job := audience.StatusCheckJob{
		AudienceID:   "23850001",
		AudienceName: "weekly-buyers",
		UserEmail:    "ops@example.com",
		ExpectedSize: 10000,
	}

	seedRun := func() *model.UploadRun {
		run := &model.UploadRun{
			ID:         uuid.New(),
			AudienceID: job.AudienceID,
			Mode:       pipeline.ModePopulate,
			Status:     model.RunStatusSucceeded,
		}
		runs.runs = append(runs.runs, run)
		return run
	}

	BeforeEach(func() {
		ctx = context.Background()
		api = newFakePlatform()
		notifier = &fakeNotifier{}
		runs = &fakeRunStore{}
		verifier = pipeline.NewVerifier(api, notifier, runs, 200, true)
	})

	It("alerts when both estimated bounds are low", func() {
		run := seedRun()
		api.status = &platform.AudienceStatus{
			ID:                         job.AudienceID,
			ApproximateCountLowerBound: i64(500),
			ApproximateCountUpperBound: i64(900),
		}

		Expect(verifier.Verify(ctx, job)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).To(Equal("ALERT: Facebook Audience Issue (Low Estimated Size) - weekly-buyers"))
		Expect(notifier.sent[0].body).To(ContainSubstring("500-900"))
		Expect(*run.Verification).To(Equal(model.VerificationAlerted))
		Expect(*run.VerifiedUpper).To(Equal(int64(900)))
	})

	It("alerts on a poor match rate when the size is above the low threshold", func() {
		seedRun()
		api.status = &platform.AudienceStatus{
			ID:                         job.AudienceID,
			ApproximateCountLowerBound: i64(2000),
			ApproximateCountUpperBound: i64(8000),
		}
		bigJob := job
		bigJob.ExpectedSize = 100000

		Expect(verifier.Verify(ctx, bigJob)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).To(ContainSubstring("Poor Match Rate"))
		Expect(notifier.sent[0].body).To(ContainSubstring("8.0%"))
	})

	It("alerts when the delivery status code is not ready", func() {
		seedRun()
		api.status = &platform.AudienceStatus{
			ID:                         job.AudienceID,
			ApproximateCountLowerBound: i64(5000),
			ApproximateCountUpperBound: i64(8000),
			DeliveryStatus:             &platform.DeliveryStatus{Code: 300, Description: "Audience too small"},
		}

		Expect(verifier.Verify(ctx, job)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).To(ContainSubstring("Audience Not Ready (Status Code: 300)"))
		Expect(notifier.sent[0].body).To(ContainSubstring("Audience too small"))
	})

	It("sends a routine status email when the audience is healthy", func() {
		run := seedRun()
		api.status = &platform.AudienceStatus{
			ID:                         job.AudienceID,
			Name:                       job.AudienceName,
			ApproximateCountLowerBound: i64(5000),
			ApproximateCountUpperBound: i64(8000),
			DeliveryStatus:             &platform.DeliveryStatus{Code: 200, Description: "Ready"},
		}

		Expect(verifier.Verify(ctx, job)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).To(Equal("Facebook Audience Status: weekly-buyers"))
		Expect(notifier.sent[0].subject).NotTo(ContainSubstring("ALERT"))
		Expect(*run.Verification).To(Equal(model.VerificationHealthy))
	})

	It("stays silent for a healthy audience when routine notifications are off", func() {
		seedRun()
		quiet := pipeline.NewVerifier(api, notifier, runs, 200, false)
		api.status = &platform.AudienceStatus{
			ID:                         job.AudienceID,
			ApproximateCountLowerBound: i64(5000),
			ApproximateCountUpperBound: i64(8000),
		}

		Expect(quiet.Verify(ctx, job)).To(Succeed())
		Expect(notifier.sent).To(BeEmpty())
	})

	It("treats missing bounds as unavailable rather than zero", func() {
		seedRun()
		api.status = &platform.AudienceStatus{ID: job.AudienceID}

		Expect(verifier.Verify(ctx, job)).To(Succeed())
		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).NotTo(ContainSubstring("ALERT"))
	})

	It("alerts without retrying when the audience no longer exists", func() {
		run := seedRun()
		api.statusErr = platform.NewErrAudienceNotFound(job.AudienceID)

		Expect(verifier.Verify(ctx, job)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).To(ContainSubstring("Audience Not Found"))
		Expect(*run.Verification).To(Equal(model.VerificationNotFound))
	})

	It("alerts without retrying when the status endpoint errors", func() {
		run := seedRun()
		api.statusErr = errors.New("502 bad gateway")

		Expect(verifier.Verify(ctx, job)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].subject).To(ContainSubstring("Status Check API Error"))
		Expect(*run.Verification).To(Equal(model.VerificationErrored))
	})
})
