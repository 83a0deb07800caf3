package audience_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
)

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

var _ = Describe("Chunk", func() {
	It("returns no groups for empty input", func() {
		Expect(audience.Chunk([]int{}, 10)).To(BeEmpty())
		Expect(audience.Chunk[int](nil, 10)).To(BeEmpty())
	})

	It("produces ceil(M/N) groups with the remainder last", func() {
		cases := []struct {
			m, n   int
			groups int
			last   int
		}{
			{12000, 9999, 2, 2001},
			{12000, 5000, 3, 2000},
			{10000, 5000, 2, 5000},
			{1, 50000, 1, 1},
			{50000, 50000, 1, 50000},
		}
		for _, c := range cases {
			chunks := audience.Chunk(sequence(c.m), c.n)
			Expect(chunks).To(HaveLen(c.groups), fmt.Sprintf("M=%d N=%d", c.m, c.n))
			for i := 0; i < len(chunks)-1; i++ {
				Expect(chunks[i]).To(HaveLen(c.n))
			}
			Expect(chunks[len(chunks)-1]).To(HaveLen(c.last))
		}
	})

	It("preserves order across group boundaries", func() {
		in := sequence(257)
		var out []int
		for _, chunk := range audience.Chunk(in, 25) {
			out = append(out, chunk...)
		}
		Expect(out).To(Equal(in))
	})

	It("treats a non-positive bound as 1", func() {
		chunks := audience.Chunk(sequence(3), 0)
		Expect(chunks).To(HaveLen(3))
	})
})
