package leave_test

import (
	"time"

	"github.com/frahmantamala/leave-request/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParsePeriod", func() {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	DescribeTable("readable periods",
		func(period string, start, end time.Time) {
			gotStart, gotEnd, err := leave.ParsePeriod(period, time.UTC)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotStart).To(Equal(start))
			Expect(gotEnd).To(Equal(end))
		},
		Entry("ISO range with dots", "2024-05-01..2024-05-03", day(2024, 5, 1), day(2024, 5, 4)),
		Entry("ISO range with words", "from 2024-05-01 to 2024-05-03", day(2024, 5, 1), day(2024, 5, 4)),
		Entry("European range", "01.05.2024 - 03.05.2024", day(2024, 5, 1), day(2024, 5, 4)),
		Entry("single day", "2024-12-31", day(2024, 12, 31), day(2025, 1, 1)),
		Entry("mixed formats", "2024-02-28 - 01.03.2024", day(2024, 2, 28), day(2024, 3, 2)),
	)

	DescribeTable("unreadable periods",
		func(period string) {
			_, _, err := leave.ParsePeriod(period, time.UTC)
			Expect(err).To(HaveOccurred())
		},
		Entry("free text", "next week"),
		Entry("empty", ""),
		Entry("three dates", "2024-05-01 2024-05-02 2024-05-03"),
		Entry("reversed", "2024-05-03..2024-05-01"),
		Entry("impossible date", "2024-02-30"),
	)

	It("should anchor dates in the given location", func() {
		loc, err := time.LoadLocation("Europe/Berlin")
		Expect(err).NotTo(HaveOccurred())

		start, end, err := leave.ParsePeriod("2024-05-01", loc)
		Expect(err).NotTo(HaveOccurred())
		Expect(start.Location()).To(Equal(loc))
		Expect(start.UTC()).To(Equal(time.Date(2024, 4, 30, 22, 0, 0, 0, time.UTC)))
		Expect(end.Sub(start)).To(Equal(24 * time.Hour))
	})
})
