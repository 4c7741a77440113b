package dynamo_test

import (
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ergobox/internal/dynamo"
)

var _ = Describe("ParallelFor", func() {
	DescribeTable("visits every index exactly once",
		func(n, minChunk, workers int) {
			counts := make([]int32, n)
			dynamo.ParallelFor(n, minChunk, workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&counts[i], 1)
				}
			})
			for i, c := range counts {
				Expect(c).To(Equal(int32(1)), "index %d", i)
			}
		},
		Entry("serial", 10, 16, 4),
		Entry("even split", 64, 4, 4),
		Entry("ragged split", 103, 8, 6),
		Entry("default workers", 1000, 1, 0),
		Entry("empty", 0, 1, 4),
	)
})
