package audience_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
)

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

var _ = Describe("Normalization", func() {
	It("trims and lowercases emails", func() {
		Expect(audience.NormalizeEmail("  John.Doe@Example.COM ")).To(Equal("john.doe@example.com"))
	})

	It("strips non-digits from phones", func() {
		Expect(audience.NormalizePhone("+1 (555) 123-4567")).To(Equal("15551234567"))
		Expect(audience.NormalizePhone("no digits")).To(Equal(""))
	})

	It("keeps only a-z in names and locations", func() {
		Expect(audience.NormalizeName("O'Brien Jr.")).To(Equal("obrienjr"))
		Expect(audience.NormalizeLocation("San Diego")).To(Equal("sandiego"))
		Expect(audience.NormalizeLocation("NY")).To(Equal("ny"))
	})

	It("removes spaces from zips without validating digits", func() {
		Expect(audience.NormalizeZip("SW1A 1AA")).To(Equal("sw1a1aa"))
		Expect(audience.NormalizeZip("90210")).To(Equal("90210"))
	})

	It("accepts only m or f as gender", func() {
		Expect(audience.NormalizeGender("M")).To(Equal("m"))
		Expect(audience.NormalizeGender("f")).To(Equal("f"))
		Expect(audience.NormalizeGender("female")).To(Equal(""))
		Expect(audience.NormalizeGender("")).To(Equal(""))
	})
})

var _ = Describe("HashRecord", func() {
	It("produces 14 hashes in schema order", func() {
		rec := audience.CustomerRecord{
			Email1:  "John@Example.com",
			Phone1:  "555-0100",
			FN:      "John",
			LN:      "Doe",
			Zip:     "90210",
			CT:      "Los Angeles",
			ST:      "CA",
			Country: "US",
			DOBY:    "1987",
			Gen:     "M",
		}
		row := audience.HashRecord(rec)
		Expect(row).To(HaveLen(audience.NumSchemaFields))
		Expect(audience.Schema()).To(HaveLen(audience.NumSchemaFields))

		Expect(row[0]).To(Equal(sha("john@example.com")))
		Expect(row[3]).To(Equal(sha("5550100")))
		Expect(row[6]).To(Equal(sha("john")))
		Expect(row[7]).To(Equal(sha("doe")))
		Expect(row[8]).To(Equal(sha("90210")))
		Expect(row[9]).To(Equal(sha("losangeles")))
		Expect(row[10]).To(Equal(sha("ca")))
		Expect(row[11]).To(Equal(sha("us")))
		Expect(row[12]).To(Equal(sha("1987")))
		Expect(row[13]).To(Equal(sha("m")))
	})

	It("is deterministic", func() {
		rec := audience.CustomerRecord{Email1: "a@b.c", Phone1: "123"}
		Expect(audience.HashRecord(rec)).To(Equal(audience.HashRecord(rec)))
	})

	It("maps empty fields to empty strings, not hashes of empty", func() {
		row := audience.HashRecord(audience.CustomerRecord{})
		for _, h := range row {
			Expect(h).To(Equal(""))
		}
	})

	It("birth year passes through unmodified before hashing", func() {
		row := audience.HashRecord(audience.CustomerRecord{DOBY: "1990"})
		Expect(row[12]).To(Equal(sha("1990")))
	})
})

var _ = Describe("UploadAccumulator", func() {
	It("accumulates counts monotonically and keeps the last session id", func() {
		var acc audience.UploadAccumulator
		acc.Apply(audience.UploadDelta{SessionID: "s1", NumReceived: 9999, NumInvalidEntries: 3})
		acc.Apply(audience.UploadDelta{SessionID: "s2", NumReceived: 2001, NumInvalidEntries: 1,
			InvalidEntrySamples: []json.RawMessage{json.RawMessage(`"bad"`)}})

		Expect(acc.SessionID).To(Equal("s2"))
		Expect(acc.NumReceived).To(Equal(int64(12000)))
		Expect(acc.NumInvalidEntries).To(Equal(int64(4)))
		Expect(acc.InvalidEntrySamples).To(HaveLen(1))
	})

	It("does not clear the session id on an empty response", func() {
		var acc audience.UploadAccumulator
		acc.Apply(audience.UploadDelta{SessionID: "s1"})
		acc.Apply(audience.UploadDelta{})
		Expect(acc.SessionID).To(Equal("s1"))
	})

	It("floors the expected size at zero", func() {
		acc := audience.UploadAccumulator{NumReceived: 5, NumInvalidEntries: 9}
		Expect(acc.ExpectedSize()).To(Equal(int64(0)))

		acc = audience.UploadAccumulator{NumReceived: 12000, NumInvalidEntries: 4}
		Expect(acc.ExpectedSize()).To(Equal(int64(11996)))
	})
})
